package cli

import (
	"fmt"
	"os"

	"pdfqa/internal/adapter/chunker"
	"pdfqa/internal/adapter/embedding"
	"pdfqa/internal/adapter/extractor"
	"pdfqa/internal/adapter/llm"
	"pdfqa/internal/adapter/ocr"
	"pdfqa/internal/adapter/store"
	"pdfqa/internal/port"
	"pdfqa/internal/usecase"
)

// openIndex opens the configured vector index, refusing to reuse one built
// with a different embedding setup.
func openIndex() (*store.BoltIndex, error) {
	if err := cfg.EnsureIndexDir(); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	idx, err := store.NewBoltIndex(cfg.IndexDBPath(), cfg.Embedding.Dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	rebuild, reason, err := idx.RequiresRebuild(cfg.Embedding.Model, cfg.Embedding.Dimension)
	if err != nil {
		idx.Close()
		return nil, err
	}
	if rebuild {
		idx.Close()
		return nil, fmt.Errorf("%s; run 'pdfqa clear' and re-ingest your documents", reason)
	}

	return idx, nil
}

func buildEmbedder() (port.Embedder, error) {
	c := cfg.Embedding
	switch c.Provider {
	case "openai":
		return embedding.NewOpenAIClient(c.APIKeyEnv, c.Model, c.Dimension, c.BatchSize)
	case "mock":
		return embedding.NewMock(c.Dimension), nil
	default:
		return embedding.NewOllamaClient(c.Model, c.BaseURL, c.Dimension, c.BatchSize), nil
	}
}

func buildGenerator() port.Generator {
	c := cfg.Generate
	if c.Provider == "mock" {
		return llm.NewMock("mock answer")
	}
	return llm.NewClient(c.BaseURL, c.APIKeyEnv, c.Model, c.Temperature, c.MaxTokens)
}

// buildSession assembles the full pipeline. The caller owns closing the
// returned index.
func buildSession() (*usecase.Session, *store.BoltIndex, error) {
	idx, err := openIndex()
	if err != nil {
		return nil, nil, err
	}

	embedder, err := buildEmbedder()
	if err != nil {
		idx.Close()
		return nil, nil, err
	}

	engine := ocr.NewTesseract(cfg.Extract.OCRLang, cfg.Extract.OCRTimeout)
	ext := extractor.NewPDFExtractor(engine, cfg.Extract.ScannedTextThreshold)
	chk := chunker.NewCharChunker(cfg.Chunk.Size, cfg.Chunk.Overlap)

	session := usecase.NewSession(ext, chk, embedder, idx, buildGenerator(), cfg)
	return session, idx, nil
}

func indexExists() bool {
	_, err := os.Stat(cfg.IndexDBPath())
	return err == nil
}
