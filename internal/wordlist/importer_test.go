package wordlist

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "dmt.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestImportCSV(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.CreateWord(ctx, &model.Word{Text: "kat", DifficultyLevel: 2, PatternTags: "old"}); err != nil {
		t.Fatalf("create word: %v", err)
	}

	path := filepath.Join(t.TempDir(), "words.csv")
	content := strings.Join([]string{
		"text,difficulty_level,pattern_tags",
		"kat,1,short vowel",
		"Fiets,2,consonant blend",
		"olifant,,",
		",1,",
		"boom,7,long vowel",
		"vis,abc,",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	result, err := ImportWords(ctx, st, DefaultImportConfig(path))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.TotalProcessed != 6 || result.Created != 2 || result.Updated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 row errors, got %v", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0], "Row 5:") {
		t.Fatalf("expected row-numbered error, got %q", result.Errors[0])
	}

	kat, err := st.GetWordByText(ctx, "kat")
	if err != nil {
		t.Fatalf("get kat: %v", err)
	}
	if kat.DifficultyLevel != 1 || kat.PatternTags != "short vowel" {
		t.Fatalf("expected kat to be updated, got %+v", kat)
	}
	olifant, err := st.GetWordByText(ctx, "olifant")
	if err != nil {
		t.Fatalf("get olifant: %v", err)
	}
	if olifant.DifficultyLevel != LevelMulti || olifant.PatternTags != "long word" {
		t.Fatalf("expected classified olifant, got %+v", olifant)
	}

	again, err := ImportWords(ctx, st, DefaultImportConfig(path))
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if again.Created != 0 || again.Updated != 0 || again.Unchanged != 3 {
		t.Fatalf("expected idempotent reimport, got %+v", again)
	}
}

func TestImportXLSX(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "words.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"text", "difficulty_level", "pattern_tags"},
		{"trein", 2, "consonant cluster"},
		{"vliegtuig", 3, "compound word"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}
	_ = f.Close()

	result, err := ImportWords(ctx, st, DefaultImportConfig(path))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Created != 2 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	words, err := st.ListWords(ctx, 3)
	if err != nil {
		t.Fatalf("list words: %v", err)
	}
	if len(words) != 1 || words[0].Text != "vliegtuig" || words[0].PatternTags != "compound word" {
		t.Fatalf("unexpected level 3 words: %+v", words)
	}
}

func TestImportText(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("kat\n\nstorm\nolifant\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	result, err := ImportWords(ctx, st, ImportConfig{FilePath: path})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Created != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	storm, err := st.GetWordByText(ctx, "storm")
	if err != nil {
		t.Fatalf("get storm: %v", err)
	}
	if storm.DifficultyLevel != LevelCluster {
		t.Fatalf("expected classified level 2, got %d", storm.DifficultyLevel)
	}

	forced, err := ImportWords(ctx, st, ImportConfig{FilePath: path, Level: 3})
	if err != nil {
		t.Fatalf("import with level: %v", err)
	}
	if forced.Updated != 2 || forced.Unchanged != 1 {
		t.Fatalf("expected kat and storm updated, got %+v", forced)
	}

	if _, err := ImportWords(ctx, st, ImportConfig{FilePath: path, Level: 9}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
	if _, err := ImportWords(ctx, st, ImportConfig{FilePath: filepath.Join(t.TempDir(), "words.json")}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
