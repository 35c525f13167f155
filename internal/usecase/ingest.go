package usecase

import (
	"context"
	"log/slog"
	"strings"

	"pdfqa/internal/adapter/extractor"
	"pdfqa/internal/domain"
)

// Ingest runs the full ingestion pipeline for one document: extract pages,
// normalize, chunk, embed, and commit everything in a single index
// transaction. Any failure before the commit leaves the index untouched.
//
// Chunk identifiers are deterministic, so re-ingesting identical content
// overwrites in place and the chunk count does not grow. clearExisting wipes
// the index inside the same write boundary before inserting.
func (s *Session) Ingest(ctx context.Context, pdfBytes []byte, name string, clearExisting bool) (domain.IngestResult, error) {
	result := domain.IngestResult{Document: name}

	if strings.TrimSpace(name) == "" {
		return result, &domain.ValidationError{Reason: "document name is empty"}
	}

	pages, err := s.extractor.Extract(ctx, pdfBytes, name)
	if err != nil {
		return result, err
	}
	result.Pages = len(pages)

	var chunks []domain.Chunk
	for _, page := range pages {
		if page.OCRText != "" {
			result.OCRPages++
		}
		text := extractor.Normalize(page)
		if text == "" {
			continue
		}
		chunks = append(chunks, s.chunker.Chunk(name, page.Number, text)...)
	}

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Text
		}

		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return result, err
		}
		for i := range chunks {
			chunks[i].Vector = vectors[i]
		}
	}

	// Commit even a zero-chunk ingest so clearExisting and the recorded
	// document name take effect.
	if err := s.index.UpsertBatch(chunks, name, clearExisting); err != nil {
		return result, err
	}
	result.ChunksAdded = len(chunks)

	slog.Info("document ingested",
		"document", name,
		"pages", result.Pages,
		"ocr_pages", result.OCRPages,
		"chunks", result.ChunksAdded,
	)
	return result, nil
}
