package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into unicode word tokens. It is language-agnostic:
// Devanagari and Latin script words count the same way, which keeps the
// context budget meaningful for Hindi, English, and code-mixed questions.
type Tokenizer struct{}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize splits text into lowercased word tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		tokens = append(tokens, strings.ToLower(word))
	}
	return tokens
}

// CountTokens returns an approximate token count for LLM budget estimation.
func (t *Tokenizer) CountTokens(text string) int {
	words := splitWords(text)
	if len(words) == 0 {
		return 0
	}
	// Rough estimate: average word is about 1.3 subword tokens.
	return int(float64(len(words)) * 1.3)
}

// splitWords splits text into words using unicode word boundaries.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		// Marks keep Devanagari words whole: matras and the anusvara are
		// combining marks, not letters.
		if unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}
