package domain

import "fmt"

// Error kinds. Ingestion errors are scoped to the document being ingested and
// never leave the index partially mutated; query errors surface to the caller
// as a failed answer.
type (
	// ExtractionError covers corrupt, encrypted, or otherwise unreadable PDFs.
	ExtractionError struct {
		Document string
		Err      error
	}

	// OCRError covers a missing language pack or OCR engine failure.
	OCRError struct {
		Page int
		Err  error
	}

	// EmbeddingError covers provider unavailability or malformed output.
	EmbeddingError struct {
		Err error
	}

	// VectorStoreError covers storage I/O failure or corruption on read.
	// Fatal for the current operation; never silently degraded.
	VectorStoreError struct {
		Op  string
		Err error
	}

	// GenerationError covers model unavailability, timeout, or malformed output.
	GenerationError struct {
		Err error
	}

	// ValidationError covers bad caller input (empty question, zero-byte upload).
	ValidationError struct {
		Reason string
	}

	// CapacityError is returned when the generation wait queue is full.
	CapacityError struct {
		Depth int
	}
)

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %q: %v", e.Document, e.Err)
}
func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *OCRError) Error() string {
	return fmt.Sprintf("ocr failed on page %d: %v", e.Page, e.Err)
}
func (e *OCRError) Unwrap() error { return e.Err }

func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding failed: %v", e.Err) }
func (e *EmbeddingError) Unwrap() error { return e.Err }

func (e *VectorStoreError) Error() string {
	return fmt.Sprintf("vector store %s failed: %v", e.Op, e.Err)
}
func (e *VectorStoreError) Unwrap() error { return e.Err }

func (e *GenerationError) Error() string { return fmt.Sprintf("generation failed: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

func (e *ValidationError) Error() string { return fmt.Sprintf("invalid input: %s", e.Reason) }

func (e *CapacityError) Error() string {
	return fmt.Sprintf("generation queue full (depth %d)", e.Depth)
}
