package port

import (
	"context"

	"pdfqa/internal/domain"
)

// Extractor turns raw PDF bytes into per-page structured content.
type Extractor interface {
	// Extract returns the ordered page sequence for the document.
	// An encrypted or unparsable PDF yields a domain.ExtractionError;
	// a PDF with zero extractable pages yields an empty slice and no error.
	Extract(ctx context.Context, pdfBytes []byte, name string) ([]domain.Page, error)
}

// OCREngine recovers text from a rendered page image.
type OCREngine interface {
	// Recognize runs OCR on the image file at path.
	Recognize(ctx context.Context, imagePath string) (string, error)

	// Available reports whether the engine can run on this host.
	Available() bool
}
