// Package session records the events of a timed reading session.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/dmt/internal/scoring"
)

// ErrInvalidConfiguration is returned for a non-positive duration budget.
var ErrInvalidConfiguration = scoring.ErrInvalidConfiguration

// ErrSessionAlreadyFinished is returned by any mutation of a finished session.
var ErrSessionAlreadyFinished = errors.New("session already finished")

// Status is the lifecycle state of a session.
type Status string

const (
	StatusOpen     Status = "open"
	StatusFinished Status = "finished"
)

// Session holds the mutable state of one reading session. All methods are
// safe for concurrent use; each call holds the session lock for its whole
// duration.
type Session struct {
	mu sync.Mutex

	id         string
	ownerID    int64
	budget     int
	openedAt   time.Time
	finishedAt time.Time

	presented       []string
	read            []string
	errorCount      int
	selfCorrections int

	status Status
	result *scoring.Result
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID                    string
	OwnerID               int64
	DurationBudgetSeconds int
	OpenedAt              time.Time
	FinishedAt            time.Time
	WordsPresented        []string
	WordsRead             []string
	ErrorCount            int
	SelfCorrectionCount   int
	Status                Status
	Result                *scoring.Result
}

// Open starts a new session for ownerID scored against durationBudgetSeconds.
func Open(ownerID int64, durationBudgetSeconds int) (*Session, error) {
	if durationBudgetSeconds <= 0 {
		return nil, ErrInvalidConfiguration
	}
	return &Session{
		id:        uuid.New().String(),
		ownerID:   ownerID,
		budget:    durationBudgetSeconds,
		openedAt:  time.Now(),
		presented: []string{},
		read:      []string{},
		status:    StatusOpen,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// OwnerID returns the id of the user the session belongs to.
func (s *Session) OwnerID() int64 {
	return s.ownerID
}

// RecordEvent registers one presented word. A correct word counts as read,
// otherwise it counts as an error. The self-correction flag is counted
// independently of correctness.
func (s *Session) RecordEvent(word string, wasCorrect, wasSelfCorrected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusOpen {
		return ErrSessionAlreadyFinished
	}
	s.presented = append(s.presented, word)
	if wasCorrect {
		s.read = append(s.read, word)
	} else {
		s.errorCount++
	}
	if wasSelfCorrected {
		s.selfCorrections++
	}
	return nil
}

// Finish scores the session and freezes it. A session can be finished once;
// later calls return ErrSessionAlreadyFinished and the stored result stays
// available through Snapshot.
func (s *Session) Finish() (scoring.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.finishLocked(time.Now())
}

func (s *Session) finishLocked(at time.Time) (scoring.Result, error) {
	if s.status != StatusOpen {
		return scoring.Result{}, ErrSessionAlreadyFinished
	}
	result, err := scoring.Score(scoring.Input{
		WordsRead:       len(s.read),
		Errors:          s.errorCount,
		SelfCorrections: s.selfCorrections,
		DurationSeconds: s.budget,
	})
	if err != nil {
		return scoring.Result{}, err
	}
	s.result = &result
	s.status = StatusFinished
	s.finishedAt = at
	return result, nil
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:                    s.id,
		OwnerID:               s.ownerID,
		DurationBudgetSeconds: s.budget,
		OpenedAt:              s.openedAt,
		FinishedAt:            s.finishedAt,
		WordsPresented:        append([]string(nil), s.presented...),
		WordsRead:             append([]string(nil), s.read...),
		ErrorCount:            s.errorCount,
		SelfCorrectionCount:   s.selfCorrections,
		Status:                s.status,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

// reap decides whether a sweep at now removes the session. An open session
// past its budget plus grace is finished here, under the same lock that
// guards RecordEvent, and reported as expired. A finished session still
// registered after grace is returned for another persist attempt.
func (s *Session) reap(now time.Time, grace time.Duration) (remove, expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.status {
	case StatusOpen:
		deadline := s.openedAt.Add(time.Duration(s.budget)*time.Second + grace)
		if !now.After(deadline) {
			return false, false
		}
		if _, err := s.finishLocked(now); err != nil {
			return false, false
		}
		return true, true
	default:
		return now.After(s.finishedAt.Add(grace)), false
	}
}

// open reports whether the session still accepts events.
func (s *Session) open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == StatusOpen
}
