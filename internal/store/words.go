package store

import (
	"context"

	"github.com/verte-zerg/dmt/internal/model"
)

const wordColumns = `id, text, difficulty_level, pattern_tags`

// CreateWord inserts a word and sets its ID.
func (s *Store) CreateWord(ctx context.Context, w *model.Word) error {
	query := s.db.Rebind(`INSERT INTO words (text, difficulty_level, pattern_tags) VALUES (?, ?, ?) RETURNING id`)
	if err := s.db.QueryRowxContext(ctx, query, w.Text, w.DifficultyLevel, w.PatternTags).Scan(&w.ID); err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateWord updates the level and tags of the word with w.ID.
func (s *Store) UpdateWord(ctx context.Context, w model.Word) error {
	res, err := s.db.NamedExecContext(ctx,
		`UPDATE words SET difficulty_level = :difficulty_level, pattern_tags = :pattern_tags WHERE id = :id`, w)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetWord returns the word with the given id.
func (s *Store) GetWord(ctx context.Context, id int64) (model.Word, error) {
	var w model.Word
	query := s.db.Rebind(`SELECT ` + wordColumns + ` FROM words WHERE id = ?`)
	if err := s.db.GetContext(ctx, &w, query, id); err != nil {
		return model.Word{}, mapError(err)
	}
	return w, nil
}

// GetWordByText returns the word with the given text.
func (s *Store) GetWordByText(ctx context.Context, text string) (model.Word, error) {
	var w model.Word
	query := s.db.Rebind(`SELECT ` + wordColumns + ` FROM words WHERE text = ?`)
	if err := s.db.GetContext(ctx, &w, query, text); err != nil {
		return model.Word{}, mapError(err)
	}
	return w, nil
}

// ListWords returns words of the given level, or all words when level is 0.
func (s *Store) ListWords(ctx context.Context, level int) ([]model.Word, error) {
	words := []model.Word{}
	query := s.db.Rebind(`SELECT ` + wordColumns + ` FROM words WHERE (? = 0 OR difficulty_level = ?) ORDER BY id ASC`)
	if err := s.db.SelectContext(ctx, &words, query, level, level); err != nil {
		return nil, mapError(err)
	}
	return words, nil
}
