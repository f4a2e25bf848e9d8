package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/store"
)

const (
	defaultCurveWindow = 5
	defaultTopWords    = 10
)

// SessionLister loads finished sessions.
type SessionLister interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionRecord, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Records []model.SessionRecord
	Words   []model.WordAggregate
}

// BuildReport loads the sessions selected by cfg, oldest first, and counts
// per-word misreads across them.
func BuildReport(ctx context.Context, st SessionLister, cfg model.StatsConfig) (Report, error) {
	records, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	return Report{
		Records: records,
		Words:   store.AggregateWords(records),
	}, nil
}

// Render writes the full text report. A zero width uses the terminal width.
func Render(w io.Writer, report Report, cfg model.StatsConfig, width int, useColor bool) error {
	if err := RenderSummary(w, report.Records); err != nil {
		return err
	}
	if len(report.Records) == 0 {
		return nil
	}
	window := cfg.CurveWindow
	if window <= 0 {
		window = defaultCurveWindow
	}
	if err := RenderCurves(w, report.Records, window, width, useColor); err != nil {
		return err
	}
	top := cfg.TopWords
	if top <= 0 {
		top = defaultTopWords
	}
	return RenderMisreadTable(w, report.Words, top)
}
