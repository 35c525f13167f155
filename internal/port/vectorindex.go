package port

import "pdfqa/internal/domain"

// VectorIndex is the persistent store of chunk vectors and payloads.
//
// Writes are serialized relative to each other and to reads: a Search never
// observes a partially applied batch or an in-progress clear.
type VectorIndex interface {
	// UpsertBatch commits all entries in a single transaction, updating the
	// corpus status in the same transaction. clearFirst wipes the index
	// before inserting, inside the same write boundary.
	UpsertBatch(entries []domain.Chunk, docName string, clearFirst bool) error

	// Search returns up to k results ranked by cosine similarity, ties
	// broken by insertion order (earlier-inserted ranks higher).
	Search(query []float32, k int) ([]domain.RetrievedResult, error)

	// Clear removes every entry. After it returns Count is 0 and no prior
	// vector is retrievable.
	Clear() error

	// Count returns the number of stored chunks.
	Count() (int, error)

	// Status returns the corpus status tracked alongside the index.
	Status() (domain.CorpusStatus, error)

	Close() error
}
