package wordlist

import "strings"

// Difficulty levels of a DMT card.
const (
	LevelOneSyllable = 1
	LevelCluster     = 2
	LevelMulti       = 3
)

const vowels = "aeiouyäëïöüáéíóú"

var clusters = []string{"scht", "cht", "nk", "ng", "st", "str", "spr", "sch", "kr", "tr", "pr", "gr"}

// CountSyllables approximates syllables by counting vowel groups.
func CountSyllables(word string) int {
	count := 0
	inVowel := false
	for _, r := range strings.ToLower(word) {
		if strings.ContainsRune(vowels, r) {
			if !inVowel {
				count++
			}
			inVowel = true
			continue
		}
		inVowel = false
	}
	return count
}

// HasCluster reports whether word contains a consonant cluster that makes a
// one-syllable word harder to decode.
func HasCluster(word string) bool {
	lower := strings.ToLower(word)
	for _, c := range clusters {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

// ClassifyLevel assigns a DMT level: 1 for short one-syllable words, 2 for
// one-syllable words with clusters or more than four letters, 3 for words
// with more than one syllable.
func ClassifyLevel(word string) int {
	if CountSyllables(word) > 1 {
		return LevelMulti
	}
	if HasCluster(word) || len([]rune(word)) > 4 {
		return LevelCluster
	}
	return LevelOneSyllable
}

// PatternTags describes the decoding pattern of word, for example
// "consonant cluster" or "long vowel".
func PatternTags(word string) string {
	lower := strings.ToLower(word)
	switch {
	case CountSyllables(lower) > 2:
		return "long word"
	case CountSyllables(lower) == 2:
		return "two syllables"
	case HasCluster(lower):
		return "consonant cluster"
	case hasDoubleVowel(lower):
		return "long vowel"
	default:
		return "short vowel"
	}
}

var doubleVowels = []string{"aa", "ee", "oo", "uu", "ie", "oe", "eu", "ui", "ij", "ei", "ou", "au"}

func hasDoubleVowel(word string) bool {
	for _, d := range doubleVowels {
		if strings.Contains(word, d) {
			return true
		}
	}
	return false
}
