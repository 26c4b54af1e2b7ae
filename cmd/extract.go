package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/expenseatlas/atlas/extractor"
	"github.com/expenseatlas/atlas/extractor/common"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extracts transactions from statement file(s)",
	Long: `Extracts transactions from a statement file or every statement in a
folder. PDF files go through text-layer extraction first; CSV and plain
text files are read as-is.`,
	Run: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) {
	target := viper.GetString("target")
	ctx := context.Background()
	processor := newProcessor(ctx)

	if info, err := os.Stat(target); err == nil && info.IsDir() {
		log.Println("Scanning", target)

		entries, err := os.ReadDir(target)
		if err != nil {
			log.Fatal(err)
		}

		results := []extractor.Result{}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			result, err := extractFile(ctx, processor, filepath.Join(target, e.Name()))
			if err != nil {
				log.Printf("skipping %s: %v", e.Name(), err)
				continue
			}
			if len(result.Transactions) > 0 {
				results = append(results, result)
			}
		}

		asJSON, _ := json.Marshal(results)
		fmt.Println(string(asJSON))
		return
	}

	result, err := extractFile(ctx, processor, target)
	if err != nil {
		log.Fatalf("error: %v", err)
	}

	asJSON, _ := json.Marshal(result)
	fmt.Println(string(asJSON))
}

func extractFile(ctx context.Context, processor *extractor.Processor, path string) (extractor.Result, error) {
	var text string
	var format extractor.Format
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		log.Println("Extracting PDF text from", path)
		text, err = common.ExtractTextFromPDF(path)
		format = extractor.FormatPDF
	case ".csv":
		var raw []byte
		raw, err = os.ReadFile(path)
		text = string(raw)
		format = extractor.FormatCSV
	default:
		var raw []byte
		raw, err = os.ReadFile(path)
		text = string(raw)
		format = extractor.FormatUnknown
	}
	if err != nil {
		return extractor.Result{}, err
	}

	return processor.Extract(ctx, text, format)
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("folder", "f", ".", "File or folder to extract from")
	viper.BindPFlag("target", extractCmd.Flags().Lookup("folder"))
}
