package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"pdfqa/internal/adapter/fs"
)

var ingestClear bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest a PDF file or a directory of PDFs",
	Long: `Ingest extracts text and tables from each PDF (running OCR on scanned
pages), splits the text into overlapping chunks, embeds them, and commits
them to the local vector index.

Re-ingesting the same document overwrites its chunks in place.

Examples:
  pdfqa ingest report.pdf
  pdfqa ingest ./docs
  pdfqa ingest --clear report.pdf   # wipe the index first`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "clear the index before ingesting")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	var paths []string
	if info.IsDir() {
		walker := fs.NewWalker(cfg.Extract.Includes, cfg.Extract.Excludes)
		files, err := walker.Walk(path)
		if err != nil {
			return fmt.Errorf("failed to scan directory: %w", err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no PDF files found under %s", path)
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	} else {
		paths = []string{path}
	}

	session, idx, err := buildSession()
	if err != nil {
		return err
	}
	defer idx.Close()

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Ingesting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	totalChunks := 0
	totalOCR := 0
	clearFirst := ingestClear
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		result, err := session.Ingest(cmd.Context(), data, filepath.Base(p), clearFirst)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", p, err)
		}
		// Only the first document of the batch clears the index.
		clearFirst = false

		totalChunks += result.ChunksAdded
		totalOCR += result.OCRPages
		bar.Add(1)
	}

	if err := idx.RecordMeta(cfg.Embedding.Model, cfg.Embedding.Dimension); err != nil {
		return err
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Documents: %d\n", len(paths))
	fmt.Printf("  Chunks:    %d\n", totalChunks)
	if totalOCR > 0 {
		fmt.Printf("  OCR pages: %d\n", totalOCR)
	}
	fmt.Printf("\nIndex stored at: %s\n", cfg.IndexDBPath())
	return nil
}
