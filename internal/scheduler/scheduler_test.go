package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) SweepStale(context.Context) int {
	c.calls.Add(1)
	return 1
}

func TestSchedulerRunsSweep(t *testing.T) {
	sweeper := &countingSweeper{}
	s, err := New(sweeper, time.Second, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for sweeper.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if sweeper.calls.Load() == 0 {
		t.Fatalf("expected sweep to run")
	}
}

func TestNewRejectsShortInterval(t *testing.T) {
	if _, err := New(&countingSweeper{}, 10*time.Millisecond, nil); err == nil {
		t.Fatalf("expected error for sub-second interval")
	}
}
