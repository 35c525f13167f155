package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unicode"

	"pdfqa/internal/domain"
)

// lookbackWindow is how far back from the target size the chunker searches
// for a sentence or whitespace boundary before force-splitting.
const lookbackWindow = 100

// CharChunker splits normalized page text into overlapping chunks addressed
// by rune offset. Splitting is deterministic: identical text and
// configuration always produce identical boundaries and chunk IDs, which
// makes re-ingestion idempotent.
type CharChunker struct {
	size    int
	overlap int
}

func NewCharChunker(size, overlap int) *CharChunker {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 4
	}
	return &CharChunker{size: size, overlap: overlap}
}

// Chunk splits text into (offset, text) chunks. Each chunk after the first
// starts overlap runes before the previous chunk's end. Offsets never cross
// the page boundary because chunking operates on one page at a time.
func (c *CharChunker) Chunk(document string, page int, text string) []domain.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	start := 0

	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.splitPoint(runes, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			ID:       chunkID(document, page, start),
			Document: document,
			Page:     page,
			Start:    start,
			End:      end,
			Text:     string(runes[start:end]),
		})

		next := end - c.overlap
		if next <= start {
			if end == len(runes) {
				break
			}
			next = start + 1
		}
		if next >= len(runes) {
			break
		}
		start = next
	}

	return chunks
}

// splitPoint picks the chunk end: the sentence boundary closest to target
// within the lookback window wins, then the closest whitespace, else the
// exact target offset.
func (c *CharChunker) splitPoint(runes []rune, start, target int) int {
	low := target - lookbackWindow
	if low < start+1 {
		low = start + 1
	}

	for i := target; i > low; i-- {
		if isSentenceEnd(runes[i-1]) {
			return i
		}
	}
	for i := target; i > low; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return target
}

// isSentenceEnd reports sentence terminators, including the Devanagari danda.
func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '।', '॥', '\n':
		return true
	}
	return false
}

// chunkID derives a stable identifier from the chunk's address. Re-ingesting
// identical content yields identical IDs, so upserts overwrite rather than
// duplicate.
func chunkID(document string, page, start int) string {
	data := fmt.Sprintf("%s:%d:%d", document, page, start)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
