package extractor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdfqa/internal/domain"
	"pdfqa/internal/port"
)

// PDFExtractor turns raw PDF bytes into per-page structured content.
//
// Native text and structured tables are read first; pages whose native
// character count falls below the scanned-text threshold are rendered to
// images and recovered through OCR instead.
type PDFExtractor struct {
	ocr       port.OCREngine
	threshold int
}

func NewPDFExtractor(ocr port.OCREngine, scannedTextThreshold int) *PDFExtractor {
	if scannedTextThreshold <= 0 {
		scannedTextThreshold = 50
	}
	return &PDFExtractor{ocr: ocr, threshold: scannedTextThreshold}
}

// Extract returns the ordered page sequence for the document. Encrypted or
// unparsable PDFs fail with a domain.ExtractionError; a PDF with zero
// extractable pages returns an empty slice.
func (e *PDFExtractor) Extract(ctx context.Context, pdfBytes []byte, name string) ([]domain.Page, error) {
	if len(pdfBytes) == 0 {
		return nil, &domain.ValidationError{Reason: "empty upload"}
	}

	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return nil, &domain.ExtractionError{Document: name, Err: err}
	}

	totalPages := reader.NumPage()
	pages := make([]domain.Page, 0, totalPages)

	// Temp copy of the PDF, created lazily: pdfcpu and tesseract are
	// file-driven and only scanned pages need them.
	var pdfPath string
	defer func() {
		if pdfPath != "" {
			os.Remove(pdfPath)
		}
	}()

	for num := 1; num <= totalPages; num++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := reader.Page(num)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, &domain.ExtractionError{
				Document: name,
				Err:      fmt.Errorf("page %d: %w", num, err),
			}
		}

		page := domain.Page{Number: num, Text: text}

		if e.needsOCR(text) {
			// Scanned page: row positions come from the same unreliable
			// native extraction, so table detection is skipped too.
			if pdfPath == "" {
				pdfPath, err = writeTemp(pdfBytes)
				if err != nil {
					return nil, &domain.ExtractionError{Document: name, Err: err}
				}
			}
			ocrText, err := e.ocrPage(ctx, pdfPath, num)
			if err != nil {
				return nil, err
			}
			page.OCRText = ocrText
			slog.Debug("page routed through ocr",
				"document", name, "page", num, "native_chars", len(strings.TrimSpace(text)))
		} else if rows, err := p.GetTextByRow(); err == nil {
			page.Tables = detectTables(rows)
		}

		pages = append(pages, page)
	}

	return pages, nil
}

// needsOCR reports whether a page's native extraction is sparse enough to
// treat the page as scanned.
func (e *PDFExtractor) needsOCR(native string) bool {
	return len(strings.TrimSpace(native)) < e.threshold
}

// ocrPage extracts the page's images with pdfcpu and runs OCR on each,
// concatenating results in image order.
func (e *PDFExtractor) ocrPage(ctx context.Context, pdfPath string, pageNum int) (string, error) {
	if !e.ocr.Available() {
		return "", &domain.OCRError{Page: pageNum, Err: fmt.Errorf("ocr engine not available")}
	}

	tmpDir, err := os.MkdirTemp("", "pdfqa-ocr-*")
	if err != nil {
		return "", &domain.OCRError{Page: pageNum, Err: err}
	}
	defer os.RemoveAll(tmpDir)

	conf := model.NewDefaultConfiguration()
	conf.Cmd = model.EXTRACTIMAGES
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.ExtractImagesFile(pdfPath, tmpDir, []string{strconv.Itoa(pageNum)}, conf); err != nil {
		return "", &domain.OCRError{Page: pageNum, Err: fmt.Errorf("page render failed: %w", err)}
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return "", &domain.OCRError{Page: pageNum, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var out strings.Builder
	for _, n := range names {
		text, err := e.ocr.Recognize(ctx, filepath.Join(tmpDir, n))
		if err != nil {
			return "", &domain.OCRError{Page: pageNum, Err: err}
		}
		if text = strings.TrimSpace(text); text != "" {
			if out.Len() > 0 {
				out.WriteString("\n")
			}
			out.WriteString(text)
		}
	}

	return out.String(), nil
}

func writeTemp(pdfBytes []byte) (string, error) {
	f, err := os.CreateTemp("", "pdfqa-*.pdf")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(pdfBytes); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
