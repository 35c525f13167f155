package extractor

import (
	"strings"

	"pdfqa/internal/domain"
)

// Normalize merges a page's sources into one canonical text blob.
//
// Precedence: native text wins, with serialized tables appended as distinct
// sections so tabular structure survives. OCR text is used only when native
// text is absent or below the scanned-page threshold. It is never
// concatenated with native text, which would pollute the index with
// duplicate content, and any tables on an OCR-routed page are ignored for
// the same reason: they come from the unreliable native extraction.
func Normalize(page domain.Page) string {
	native := strings.TrimSpace(page.Text)

	if native == "" && page.OCRText != "" {
		return strings.TrimSpace(page.OCRText)
	}
	if page.OCRText != "" {
		// The page was routed through OCR because native text fell below
		// the threshold; the OCR output replaces the fragment.
		return strings.TrimSpace(page.OCRText)
	}

	if native == "" && len(page.Tables) == 0 {
		return ""
	}

	parts := make([]string, 0, 1+len(page.Tables))
	if native != "" {
		parts = append(parts, native)
	}
	parts = append(parts, page.Tables...)
	return strings.Join(parts, "\n\n")
}
