package domain

import "time"

// Document identifies an ingested PDF by its source filename.
type Document struct {
	Name       string
	PageCount  int
	IngestedAt time.Time
}

// Page holds the raw extraction results for a single PDF page.
// Immutable once produced by the extractor.
type Page struct {
	Number  int // 1-indexed
	Text    string
	Tables  []string // serialized table sections, row-major pipe-delimited
	OCRText string   // set only when the page was routed through OCR
}

// Chunk is a bounded, addressable slice of normalized page text.
// The ID is a deterministic function of (document, page, start offset),
// so re-ingesting identical content overwrites instead of duplicating.
type Chunk struct {
	ID       string
	Document string
	Page     int
	Start    int // rune offset into the normalized page text
	End      int
	Text     string
	Vector   []float32
}

// RetrievedResult is one similarity-search hit. Ephemeral, never persisted.
type RetrievedResult struct {
	ChunkID  string
	Score    float64
	Text     string
	Document string
	Page     int
}

// Citation points a reader at the source passage an answer drew from.
type Citation struct {
	Document string `json:"document"`
	Page     int    `json:"page"`
	Excerpt  string `json:"excerpt"`
}

// Answer is the result of one question against the corpus.
type Answer struct {
	Text    string     `json:"answer"`
	Sources []Citation `json:"sources"`
}

// CorpusState is the coarse ingestion state exposed to callers.
type CorpusState string

const (
	CorpusEmpty CorpusState = "empty"
	CorpusReady CorpusState = "ready"
)

// CorpusStatus tracks aggregate ingestion state. It is updated in the same
// transaction as index mutations and read-only everywhere else.
type CorpusStatus struct {
	ChunkCount   int         `json:"chunk_count"`
	DocumentName string      `json:"document_name,omitempty"`
	State        CorpusState `json:"state"`
}

// IngestResult reports what a single-document ingest committed.
type IngestResult struct {
	Document    string
	Pages       int
	OCRPages    int
	ChunksAdded int
}
