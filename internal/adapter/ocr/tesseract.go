package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Tesseract runs the tesseract binary on page images. The language pack is
// configurable; the default dual hin+eng pack covers Hindi, English, and
// code-mixed documents in one pass.
type Tesseract struct {
	lang      string
	timeout   time.Duration
	available bool
}

// NewTesseract creates the engine and probes the host for the binary once.
// A positive timeout bounds each page's run independently of the caller's
// context.
func NewTesseract(lang string, timeout time.Duration) *Tesseract {
	if lang == "" {
		lang = "hin+eng"
	}
	_, err := exec.LookPath("tesseract")
	return &Tesseract{lang: lang, timeout: timeout, available: err == nil}
}

// Available reports whether the tesseract binary is on PATH.
func (t *Tesseract) Available() bool {
	return t.available
}

// Recognize OCRs a single page image. The caller bounds the run through ctx.
// Page segmentation mode 6 (uniform block) works best for scanned documents.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "tesseract", imagePath, "stdout",
		"-l", t.lang, "--oem", "3", "--psm", "6")

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("tesseract: %s: %w", msg, err)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}

	return out.String(), nil
}

// Lang returns the configured language pack identifier.
func (t *Tesseract) Lang() string {
	return t.lang
}
