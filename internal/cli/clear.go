package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfqa/internal/adapter/store"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every indexed chunk",
	Long:  `Clear wipes the vector index. Ingested documents must be re-ingested afterwards.`,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	if !indexExists() {
		fmt.Println("Index is already empty.")
		return nil
	}

	// Open without the embedding-meta check: clearing is how a mismatched
	// index gets fixed.
	idx, err := store.NewBoltIndex(cfg.IndexDBPath(), cfg.Embedding.Dimension)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Clear(); err != nil {
		return err
	}

	fmt.Println("Index cleared.")
	return nil
}
