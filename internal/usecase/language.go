package usecase

import (
	"strings"
	"unicode"
)

// Language is the coarse language class of a question. Used as a prompt hint
// and in logs; retrieval itself is language-agnostic.
type Language string

const (
	LangEnglish  Language = "English"
	LangHindi    Language = "Hindi"
	LangHinglish Language = "Hinglish"
)

// Common Hindi function words as written in Latin letters. Any of these as a
// standalone word marks the text as Hinglish.
var hinglishMarkers = map[string]struct{}{
	"kya": {}, "ka": {}, "ki": {}, "hai": {}, "ko": {}, "me": {}, "se": {},
	"kaun": {}, "kahan": {}, "kitna": {}, "nahi": {}, "aur": {},
}

// DetectLanguage classifies text as Hindi (any Devanagari), Hinglish
// (Latin-script Hindi marker words), or English.
func DetectLanguage(text string) Language {
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			return LangHindi
		}
	}

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if _, ok := hinglishMarkers[word]; ok {
			return LangHinglish
		}
	}

	return LangEnglish
}
