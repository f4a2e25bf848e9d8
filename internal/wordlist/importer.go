package wordlist

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/store"
)

// WordStore is the persistence used by the importer.
type WordStore interface {
	GetWordByText(ctx context.Context, text string) (model.Word, error)
	CreateWord(ctx context.Context, w *model.Word) error
	UpdateWord(ctx context.Context, w model.Word) error
}

// ImportConfig defines where words come from and how rows are read.
type ImportConfig struct {
	FilePath   string
	SheetName  string // XLSX only; empty means the first sheet
	SkipHeader bool
	// Level applies to plain text lists. Zero classifies each word.
	Level int
}

// DefaultImportConfig returns the default import configuration.
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{FilePath: path, SkipHeader: true}
}

// ImportResult holds the result of an import operation.
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Unchanged      int
	Errors         []string
}

// ImportWords imports words from a .csv, .xlsx or one-word-per-line .txt file.
// Rows for words that already exist update their level and tags.
func ImportWords(ctx context.Context, st WordStore, cfg ImportConfig) (*ImportResult, error) {
	rows, err := readRows(cfg)
	if err != nil {
		return nil, err
	}
	result := &ImportResult{Errors: make([]string, 0)}
	for _, row := range rows {
		result.TotalProcessed++
		if err := importRow(ctx, st, row, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", row.num, err))
		}
	}
	return result, nil
}

type rawRow struct {
	num    int
	fields []string
}

func readRows(cfg ImportConfig) ([]rawRow, error) {
	switch strings.ToLower(filepath.Ext(cfg.FilePath)) {
	case ".csv":
		return readCSV(cfg)
	case ".xlsx":
		return readXLSX(cfg)
	case ".txt", "":
		return readText(cfg)
	default:
		return nil, fmt.Errorf("unsupported import file type %q", filepath.Ext(cfg.FilePath))
	}
}

func readCSV(cfg ImportConfig) ([]rawRow, error) {
	file, err := os.Open(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only import file.
			_ = cerr
		}
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows []rawRow
	num := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		num++
		if num == 1 && cfg.SkipHeader {
			continue
		}
		rows = append(rows, rawRow{num: num, fields: fields})
	}
	return rows, nil
}

func readXLSX(cfg ImportConfig) ([]rawRow, error) {
	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only import file.
			_ = cerr
		}
	}()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	var rows []rawRow
	for i, fields := range cells {
		if i == 0 && cfg.SkipHeader {
			continue
		}
		rows = append(rows, rawRow{num: i + 1, fields: fields})
	}
	return rows, nil
}

func readText(cfg ImportConfig) ([]rawRow, error) {
	if cfg.Level < 0 || cfg.Level > LevelMulti {
		return nil, fmt.Errorf("level must be between 0 and %d", LevelMulti)
	}
	words, err := LoadWords(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}
	rows := make([]rawRow, 0, len(words))
	for i, w := range words {
		level := cfg.Level
		if level == 0 {
			level = ClassifyLevel(w)
		}
		rows = append(rows, rawRow{num: i + 1, fields: []string{w, strconv.Itoa(level), PatternTags(w)}})
	}
	return rows, nil
}

func importRow(ctx context.Context, st WordStore, row rawRow, result *ImportResult) error {
	word, err := parseRow(row.fields)
	if err != nil {
		return err
	}
	existing, err := st.GetWordByText(ctx, word.Text)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := st.CreateWord(ctx, &word); err != nil {
			return fmt.Errorf("failed to create word: %w", err)
		}
		result.Created++
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up word: %w", err)
	}
	if existing.DifficultyLevel == word.DifficultyLevel && existing.PatternTags == word.PatternTags {
		result.Unchanged++
		return nil
	}
	existing.DifficultyLevel = word.DifficultyLevel
	existing.PatternTags = word.PatternTags
	if err := st.UpdateWord(ctx, existing); err != nil {
		return fmt.Errorf("failed to update word: %w", err)
	}
	result.Updated++
	return nil
}

// parseRow reads text, difficulty_level and optional pattern_tags columns.
func parseRow(fields []string) (model.Word, error) {
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}
	text := Normalize(get(0))
	if text == "" {
		return model.Word{}, fmt.Errorf("word cannot be empty")
	}
	if !filterDutch(text) {
		return model.Word{}, fmt.Errorf("invalid word %q", text)
	}
	level := ClassifyLevel(text)
	if raw := get(1); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return model.Word{}, fmt.Errorf("invalid difficulty level %q", raw)
		}
		level = parsed
	}
	if level < LevelOneSyllable || level > LevelMulti {
		return model.Word{}, fmt.Errorf("difficulty level must be between %d and %d, got %d", LevelOneSyllable, LevelMulti, level)
	}
	tags := get(2)
	if tags == "" {
		tags = PatternTags(text)
	}
	return model.Word{Text: text, DifficultyLevel: level, PatternTags: tags}, nil
}
