package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/expenseatlas/atlas/ai"
	"github.com/expenseatlas/atlas/extractor"
	"github.com/expenseatlas/atlas/extractor/common"
)

// Embedded default configuration, used when no .atlas.yaml is found.
const defaultConfigYAML = `
extraction:
  truncate_chars: 8000
  default_currency: NZD
  # Ordered date layouts; day-first wins over month-first for ambiguous
  # dates like 07/02/2026.
  date_layouts:
    - "2/1/2006"
    - "1/2/2006"
    - "2006-1-2"
    - "2 Jan 2006"
ai:
  model: gemini-2.0-flash
`

var (
	cfgFile string
	verbose bool
	noAI    bool

	rootCmd = &cobra.Command{
		Use:   "atlas [filename]",
		Short: "Extract structured transactions from bank statements",
		Long: `atlas turns raw statement text (PDF text layer or CSV content) into
normalized transaction records, using an AI structured-extraction path with
a regex fallback.`,
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				viper.Set("target", args[0])
				runExtract(extractCmd, []string{})
				return
			}
			cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.atlas.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noAI, "no-ai", false, "skip the model path and use the fallback parser only")
}

func initLogging() {
	if !verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetFlags(log.Ltime | log.Lmsgprefix)
		log.SetPrefix("INFO: ")
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".atlas")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
				fmt.Printf("Error loading embedded configuration: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

// newClassifier builds the model collaborator, or the closed-gate stub when
// the model cannot be reached. Extraction still works either way.
func newClassifier(ctx context.Context) ai.Classifier {
	if noAI {
		return ai.Unavailable{}
	}

	cfg := ai.DefaultGeminiConfig()
	if m := viper.GetString("ai.model"); m != "" {
		cfg.Model = m
	}
	for _, c := range common.Categories {
		cfg.Categories = append(cfg.Categories, string(c))
	}

	gemini, err := ai.NewGemini(ctx, cfg)
	if err != nil {
		log.Printf("model unavailable (%v), fallback parser only", err)
		return ai.Unavailable{}
	}
	return gemini
}

func newProcessor(ctx context.Context) *extractor.Processor {
	return extractor.New(newClassifier(ctx), extractor.ConfigFromViper())
}
