package port

import "pdfqa/internal/domain"

// Chunker deterministically splits normalized page text into overlapping
// addressable chunks. Identical input and configuration must always produce
// byte-identical chunk boundaries and identifiers.
type Chunker interface {
	Chunk(document string, page int, text string) []domain.Chunk
}
