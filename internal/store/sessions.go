package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verte-zerg/dmt/internal/model"
)

type sessionRow struct {
	ID              string  `db:"id"`
	UserID          int64   `db:"user_id"`
	Level           int     `db:"level"`
	DurationSeconds int     `db:"duration_seconds"`
	StartedAt       string  `db:"started_at"`
	FinishedAt      string  `db:"finished_at"`
	WordsPresented  string  `db:"words_presented"`
	WordsRead       string  `db:"words_read"`
	Errors          int     `db:"errors"`
	SelfCorrections int     `db:"self_corrections"`
	CorrectWords    int     `db:"correct_words"`
	EffectiveErrors int     `db:"effective_errors"`
	WPM             float64 `db:"wpm"`
	Accuracy        float64 `db:"accuracy"`
}

const sessionColumns = `id, user_id, level, duration_seconds, started_at, finished_at, words_presented, words_read,
	errors, self_corrections, correct_words, effective_errors, wpm, accuracy`

func newSessionRow(rec model.SessionRecord) (sessionRow, error) {
	presented, err := json.Marshal(nonNil(rec.WordsPresented))
	if err != nil {
		return sessionRow{}, fmt.Errorf("failed to encode presented words: %w", err)
	}
	read, err := json.Marshal(nonNil(rec.WordsRead))
	if err != nil {
		return sessionRow{}, fmt.Errorf("failed to encode read words: %w", err)
	}
	return sessionRow{
		ID:              rec.ID,
		UserID:          rec.UserID,
		Level:           rec.Level,
		DurationSeconds: rec.DurationBudgetSeconds,
		StartedAt:       rec.StartedAt.UTC().Format(timeLayout),
		FinishedAt:      rec.FinishedAt.UTC().Format(timeLayout),
		WordsPresented:  string(presented),
		WordsRead:       string(read),
		Errors:          rec.Errors,
		SelfCorrections: rec.SelfCorrections,
		CorrectWords:    rec.CorrectWords,
		EffectiveErrors: rec.EffectiveErrors,
		WPM:             rec.WPM,
		Accuracy:        rec.Accuracy,
	}, nil
}

func (r sessionRow) toModel() (model.SessionRecord, error) {
	rec := model.SessionRecord{
		ID:                    r.ID,
		UserID:                r.UserID,
		Level:                 r.Level,
		DurationBudgetSeconds: r.DurationSeconds,
		Errors:                r.Errors,
		SelfCorrections:       r.SelfCorrections,
		CorrectWords:          r.CorrectWords,
		EffectiveErrors:       r.EffectiveErrors,
		WPM:                   r.WPM,
		Accuracy:              r.Accuracy,
	}
	var err error
	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, r.StartedAt); err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, r.FinishedAt); err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to parse finished_at: %w", err)
	}
	if err := json.Unmarshal([]byte(r.WordsPresented), &rec.WordsPresented); err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to decode presented words: %w", err)
	}
	if err := json.Unmarshal([]byte(r.WordsRead), &rec.WordsRead); err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to decode read words: %w", err)
	}
	return rec, nil
}

// InsertSession stores a finished session.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) error {
	row, err := newSessionRow(rec)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO sessions (id, user_id, level, duration_seconds, started_at, finished_at, words_presented, words_read,
			errors, self_corrections, correct_words, effective_errors, wpm, accuracy)
		 VALUES (:id, :user_id, :level, :duration_seconds, :started_at, :finished_at, :words_presented, :words_read,
			:errors, :self_corrections, :correct_words, :effective_errors, :wpm, :accuracy)`, row)
	return mapError(err)
}

// GetSession returns the finished session with the given id.
func (s *Store) GetSession(ctx context.Context, id string) (model.SessionRecord, error) {
	var row sessionRow
	query := s.db.Rebind(`SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		return model.SessionRecord{}, mapError(err)
	}
	return row.toModel()
}

// ListSessions returns finished sessions filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionRecord, error) {
	since := ""
	if cfg.Since != nil {
		since = cfg.Since.UTC().Format(timeLayout)
	}
	query := s.db.Rebind(`SELECT ` + sessionColumns + ` FROM sessions
		WHERE user_id = ? AND (? = '' OR started_at >= ?)
		ORDER BY started_at ASC`)
	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows, query, cfg.UserID, since, since); err != nil {
		return nil, mapError(err)
	}
	records := make([]model.SessionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if cfg.Last > 0 && len(records) > cfg.Last {
		records = records[len(records)-cfg.Last:]
	}
	return records, nil
}

// RecentWordStats aggregates presented and misread counts per word over the
// user's most recent sessions.
func (s *Store) RecentWordStats(ctx context.Context, userID int64, window int) ([]model.WordAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	records, err := s.ListSessions(ctx, model.StatsConfig{UserID: userID, Last: window})
	if err != nil {
		return nil, err
	}
	return AggregateWords(records), nil
}

// AggregateWords counts presentations and misreads per word. A word counts
// as misread each time it was presented more often than it was read.
func AggregateWords(records []model.SessionRecord) []model.WordAggregate {
	index := map[string]int{}
	var out []model.WordAggregate
	for _, rec := range records {
		readCounts := map[string]int{}
		for _, w := range rec.WordsRead {
			readCounts[w]++
		}
		for _, w := range rec.WordsPresented {
			i, ok := index[w]
			if !ok {
				i = len(out)
				index[w] = i
				out = append(out, model.WordAggregate{Word: w})
			}
			out[i].Presented++
			if readCounts[w] > 0 {
				readCounts[w]--
				continue
			}
			out[i].Misread++
		}
	}
	return out
}

func nonNil(words []string) []string {
	if words == nil {
		return []string{}
	}
	return words
}
