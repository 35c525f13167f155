package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pdfqa/config"
)

var (
	cfgFile string
	cfg     *config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pdfqa",
	Short: "Ask questions about PDF documents in English, Hindi, or Hinglish",
	Long: `pdfqa ingests PDF documents (native text, tables, and scanned pages via
OCR) into a local vector index and answers questions about them with a
language model, citing the passages each answer drew from.

Example usage:
  pdfqa ingest report.pdf          # Ingest a single PDF
  pdfqa ingest ./docs              # Ingest every PDF under a directory
  pdfqa ask "What is the revenue?" # Ask a question
  pdfqa status                     # Show corpus state`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment always wins.
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(".")
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./pdfqa.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func GetConfig() *config.Config {
	return cfg
}
