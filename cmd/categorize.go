package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/expenseatlas/atlas/extractor"
)

var categorizeFile string

var categorizeCmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize extracted transactions with the model",
	Long: `Reads a JSON array of transactions ({"merchant", "description",
"amount"}) and assigns each an expense category, one model call at a time.
Interrupting (Ctrl-C) stops further calls; results already printed stand.`,
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := os.ReadFile(categorizeFile)
		if err != nil {
			log.Fatalf("error: %v", err)
		}

		var items []extractor.Item
		if err := json.Unmarshal(raw, &items); err != nil {
			log.Fatalf("error: could not decode %s: %v", categorizeFile, err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		processor := newProcessor(ctx)
		if err := processor.Prewarm(ctx); err != nil {
			log.Printf("prewarm failed (non-fatal): %v", err)
		}

		for result := range processor.CategorizeStream(ctx, items) {
			if result.Err != nil {
				log.Printf("categorization stopped at item %d: %v", result.Index, result.Err)
				break
			}
			line, _ := json.Marshal(result)
			fmt.Println(string(line))
		}
	},
}

func init() {
	rootCmd.AddCommand(categorizeCmd)
	categorizeCmd.Flags().StringVarP(&categorizeFile, "file", "f", "", "JSON file of transactions to categorize (required)")
	categorizeCmd.MarkFlagRequired("file")
}
