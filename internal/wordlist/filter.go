package wordlist

import (
	"strings"
	"unicode"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns a language-specific filter for word lists.
func FilterForLang(lang string) FilterFunc {
	switch strings.ToLower(lang) {
	case "nl":
		return filterDutch
	default:
		return func(word string) bool { return strings.TrimSpace(word) != "" }
	}
}

// filterDutch keeps lowercase words made of letters, allowing the
// diacritics used in Dutch spelling and the apostrophe of forms like "oma's".
func filterDutch(word string) bool {
	if word == "" {
		return false
	}
	for i, r := range word {
		switch {
		case r >= 'a' && r <= 'z':
		case strings.ContainsRune(dutchDiacritics, r):
		case r == '\'' && i > 0:
		default:
			return false
		}
	}
	return true
}

const dutchDiacritics = "äëïöüáéíóúèàâêîôûç"

// Normalize lowercases and trims a word and strips surrounding punctuation.
func Normalize(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	return strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) && r != '\''
	})
}
