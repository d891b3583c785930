package vocab

import (
	"strings"
	"unicode"

	"github.com/phihung0131/vocabulary-extension/internal/apperr"
)

// maxWordLen bounds accepted input length in runes.
const maxWordLen = 100

// SanitizeWord normalizes raw user input into the canonical queue/cache
// key: trimmed, lower-cased, inner whitespace collapsed to single spaces.
// Validation happens here, before any I/O; failures carry a message key
// for the UI rather than the raw text.
func SanitizeWord(raw string) (string, error) {
	word := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if word == "" {
		return "", apperr.Validation("error.word.empty")
	}
	if len([]rune(word)) > maxWordLen {
		return "", apperr.Validation("error.word.too_long")
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return "", apperr.Validation("error.word.invalid_chars")
		}
	}
	return word, nil
}
