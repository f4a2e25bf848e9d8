// Package scheduler runs periodic maintenance jobs for the server.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Sweeper removes reading sessions nobody finished.
type Sweeper interface {
	SweepStale(ctx context.Context) int
}

// Scheduler runs the stale-session sweep on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	logger    *slog.Logger
	interval  time.Duration
}

// New creates a scheduler. interval must be at least one second.
func New(sweeper Sweeper, interval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if interval < time.Second {
		return nil, fmt.Errorf("sweep interval must be at least 1s, got %v", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		logger:    logger,
		interval:  interval,
	}, nil
}

// Start schedules the sweep and runs the scheduler without blocking.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.sweep)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sweep() {
	n := s.sweeper.SweepStale(context.Background())
	if n > 0 {
		s.logger.Info("swept stale sessions", "count", n)
	}
}
