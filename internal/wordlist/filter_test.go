package wordlist

import "testing"

func TestFilterDutch(t *testing.T) {
	filter := FilterForLang("nl")
	for _, word := range []string{"kat", "oma's", "ruïne", "café", "vliegtuig"} {
		if !filter(word) {
			t.Fatalf("expected %q to pass dutch filter", word)
		}
	}
	for _, word := range []string{"", "Kat", "co-op", "'s", "x2"} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
	if !FilterForLang("en")("Hello") {
		t.Fatalf("expected fallback filter to keep non-empty words")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Kat. ":  "kat",
		"\"Boom\"": "boom",
		"oma's":    "oma's",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClassifyLevel(t *testing.T) {
	cases := []struct {
		word  string
		level int
	}{
		{"kat", LevelOneSyllable},
		{"boom", LevelOneSyllable},
		{"vis", LevelOneSyllable},
		{"storm", LevelCluster},
		{"trein", LevelCluster},
		{"sneeuw", LevelCluster},
		{"olifant", LevelMulti},
		{"keukentafel", LevelMulti},
	}
	for _, tc := range cases {
		if got := ClassifyLevel(tc.word); got != tc.level {
			t.Fatalf("ClassifyLevel(%q) = %d, want %d", tc.word, got, tc.level)
		}
	}
}

func TestCountSyllables(t *testing.T) {
	cases := map[string]int{"kat": 1, "boom": 1, "olifant": 3, "vandaag": 2, "": 0}
	for word, want := range cases {
		if got := CountSyllables(word); got != want {
			t.Fatalf("CountSyllables(%q) = %d, want %d", word, got, want)
		}
	}
}

func TestPatternTags(t *testing.T) {
	cases := map[string]string{
		"kat":     "short vowel",
		"boom":    "long vowel",
		"storm":   "consonant cluster",
		"middag":  "two syllables",
		"olifant": "long word",
	}
	for word, want := range cases {
		if got := PatternTags(word); got != want {
			t.Fatalf("PatternTags(%q) = %q, want %q", word, got, want)
		}
	}
}

func TestSeedWordsUniqueAndLevelled(t *testing.T) {
	words := SeedWords()
	if len(words) == 0 {
		t.Fatalf("expected seed words")
	}
	seen := map[string]bool{}
	levels := map[int]int{}
	for _, w := range words {
		if seen[w.Text] {
			t.Fatalf("duplicate seed word %q", w.Text)
		}
		seen[w.Text] = true
		levels[w.DifficultyLevel]++
		if w.PatternTags == "" {
			t.Fatalf("expected tags for %q", w.Text)
		}
	}
	for level := LevelOneSyllable; level <= LevelMulti; level++ {
		if levels[level] == 0 {
			t.Fatalf("expected words for level %d", level)
		}
	}
	if !seen["bibliotheek"] || !seen["kat"] {
		t.Fatalf("expected original example words in seed")
	}
}
