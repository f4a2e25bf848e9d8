// Package practice runs reading sessions on behalf of users: it opens
// sessions with a word card, records events, persists finished sessions and
// sweeps sessions nobody finished.
package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/dmt/internal/generator"
	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/session"
	"github.com/verte-zerg/dmt/internal/stats"
	"github.com/verte-zerg/dmt/internal/store"
)

// ErrForbidden is returned when the acting user may not touch a session.
var ErrForbidden = errors.New("not authorized for this session")

const (
	defaultCardSize   = 120
	defaultWeakTop    = 8
	defaultWeakFactor = 2.0
	defaultWeakWindow = 20
)

// Store is the persistence used by the service.
type Store interface {
	GetUser(ctx context.Context, id int64) (model.User, error)
	ListWords(ctx context.Context, level int) ([]model.Word, error)
	InsertSession(ctx context.Context, rec model.SessionRecord) error
	GetSession(ctx context.Context, id string) (model.SessionRecord, error)
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionRecord, error)
	RecentWordStats(ctx context.Context, userID int64, window int) ([]model.WordAggregate, error)
}

// Options tune session defaults.
type Options struct {
	DefaultDuration int
	StaleAfter      time.Duration
	CardSize        int
	// WeakTop, WeakFactor and WeakWindow tune cards drawn with FocusWeak.
	WeakTop    int
	WeakFactor float64
	WeakWindow int
}

// Service holds open sessions in memory and persists them once finished.
type Service struct {
	store    Store
	registry *session.Registry
	logger   *slog.Logger
	now      func() time.Time
	opts     Options

	genMu sync.Mutex
	gen   *generator.Generator

	metaMu sync.Mutex
	meta   map[string]int // session id -> level
}

// NewService builds a Service. A nil logger uses slog.Default.
func NewService(st Store, gen *generator.Generator, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if gen == nil {
		gen = generator.New()
	}
	if opts.CardSize <= 0 {
		opts.CardSize = defaultCardSize
	}
	if opts.WeakTop <= 0 {
		opts.WeakTop = defaultWeakTop
	}
	if opts.WeakFactor <= 0 {
		opts.WeakFactor = defaultWeakFactor
	}
	if opts.WeakWindow <= 0 {
		opts.WeakWindow = defaultWeakWindow
	}
	return &Service{
		store:    st,
		registry: session.NewRegistry(),
		logger:   logger,
		now:      time.Now,
		opts:     opts,
		gen:      gen,
		meta:     make(map[string]int),
	}
}

// StartSessionInput describes a session to open.
type StartSessionInput struct {
	Actor model.User
	// UserID is the reader. Zero means the actor reads.
	UserID          int64
	Level           int
	DurationSeconds int
	// Words replaces the generated card when set.
	Words     []string
	CardSize  int
	FocusWeak bool
}

// StartSessionOutput is an opened session with the card to read.
type StartSessionOutput struct {
	Session session.Snapshot
	Level   int
	Card    []string
}

// StartSession opens a session and draws its card.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (StartSessionOutput, error) {
	readerID := in.UserID
	if readerID == 0 {
		readerID = in.Actor.ID
	}
	if readerID != in.Actor.ID {
		if !in.Actor.Role.CanProctor() {
			return StartSessionOutput{}, ErrForbidden
		}
		if _, err := s.store.GetUser(ctx, readerID); err != nil {
			return StartSessionOutput{}, fmt.Errorf("failed to load reader: %w", err)
		}
	}
	if in.Level < 0 || in.Level > 3 {
		return StartSessionOutput{}, fmt.Errorf("%w: level must be between 1 and 3", session.ErrInvalidConfiguration)
	}
	duration := in.DurationSeconds
	if duration == 0 {
		duration = s.opts.DefaultDuration
	}
	if duration <= 0 {
		return StartSessionOutput{}, session.ErrInvalidConfiguration
	}

	card := in.Words
	if len(card) == 0 {
		drawn, err := s.drawCard(ctx, readerID, in)
		if err != nil {
			return StartSessionOutput{}, err
		}
		if len(drawn) == 0 {
			return StartSessionOutput{}, fmt.Errorf("%w: no words available for level %d", session.ErrInvalidConfiguration, in.Level)
		}
		card = drawn
	}

	sess, err := session.Open(readerID, duration)
	if err != nil {
		return StartSessionOutput{}, err
	}

	s.registry.Add(sess)
	s.metaMu.Lock()
	s.meta[sess.ID()] = in.Level
	s.metaMu.Unlock()

	s.logger.InfoContext(ctx, "session started",
		"session_id", sess.ID(),
		"user_id", readerID,
		"level", in.Level,
		"duration_seconds", duration,
		"card_size", len(card),
	)
	return StartSessionOutput{Session: sess.Snapshot(), Level: in.Level, Card: card}, nil
}

func (s *Service) drawCard(ctx context.Context, readerID int64, in StartSessionInput) ([]string, error) {
	words, err := s.store.ListWords(ctx, in.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to load words: %w", err)
	}
	pool := make([]string, 0, len(words))
	for _, w := range words {
		pool = append(pool, w.Text)
	}
	size := in.CardSize
	if size <= 0 {
		size = s.opts.CardSize
	}

	var weak map[string]float64
	if in.FocusWeak {
		aggs, err := s.store.RecentWordStats(ctx, readerID, s.opts.WeakWindow)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load weak words", "user_id", readerID, "error", err)
		} else {
			weak = stats.SelectWeakWords(aggs, s.opts.WeakTop)
		}
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gen.WeightedCard(pool, size, weak, s.opts.WeakFactor), nil
}

// RecordEvent records one presented word on an open session.
func (s *Service) RecordEvent(ctx context.Context, actor model.User, id, word string, correct, selfCorrected bool) (session.Snapshot, error) {
	sess, err := s.openSession(ctx, actor, id)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := sess.RecordEvent(word, correct, selfCorrected); err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// FinishSession scores an open session and persists it.
func (s *Service) FinishSession(ctx context.Context, actor model.User, id string) (model.SessionRecord, error) {
	sess, err := s.openSession(ctx, actor, id)
	if err != nil {
		return model.SessionRecord{}, err
	}
	if _, err := sess.Finish(); err != nil {
		return model.SessionRecord{}, err
	}
	rec, err := s.persist(ctx, sess.Snapshot())
	if err != nil {
		return model.SessionRecord{}, err
	}
	s.logger.InfoContext(ctx, "session finished",
		"session_id", rec.ID,
		"user_id", rec.UserID,
		"wpm", rec.WPM,
		"accuracy", rec.Accuracy,
	)
	return rec, nil
}

// GetSession returns an open session from memory or a finished one from the store.
func (s *Service) GetSession(ctx context.Context, actor model.User, id string) (session.Snapshot, error) {
	if sess, err := s.registry.Get(id); err == nil {
		if err := authorize(actor, sess.OwnerID()); err != nil {
			return session.Snapshot{}, err
		}
		return sess.Snapshot(), nil
	}
	rec, err := s.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return session.Snapshot{}, session.ErrSessionNotFound
		}
		return session.Snapshot{}, fmt.Errorf("failed to load session: %w", err)
	}
	if err := authorize(actor, rec.UserID); err != nil {
		return session.Snapshot{}, err
	}
	return SnapshotFromRecord(rec), nil
}

// ListSessions returns the finished sessions of userID, newest first.
func (s *Service) ListSessions(ctx context.Context, actor model.User, userID int64) ([]model.SessionRecord, error) {
	if err := authorize(actor, userID); err != nil {
		return nil, err
	}
	records, err := s.store.ListSessions(ctx, model.StatsConfig{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// OpenCount returns the number of sessions still being recorded.
func (s *Service) OpenCount() int {
	return s.registry.OpenLen()
}

// SweepStale finishes sessions whose budget plus the stale grace elapsed and
// persists the ones with recorded words; empty ones are dropped. Finished
// sessions whose persist failed earlier are retried. Sessions that still
// fail to persist stay registered for the next sweep. It returns the number
// of sessions removed.
func (s *Service) SweepStale(ctx context.Context) int {
	removed := 0
	for _, sw := range s.registry.Sweep(s.now(), s.opts.StaleAfter) {
		snap := sw.Session.Snapshot()
		if sw.Expired && len(snap.WordsPresented) == 0 {
			s.takeLevel(snap.ID)
			removed++
			s.logger.InfoContext(ctx, "stale session dropped", "session_id", snap.ID, "user_id", snap.OwnerID)
			continue
		}
		rec := recordFromSnapshot(snap, s.peekLevel(snap.ID))
		err := s.store.InsertSession(ctx, rec)
		if err != nil && !errors.Is(err, store.ErrDuplicate) {
			s.logger.ErrorContext(ctx, "failed to persist stale session", "session_id", snap.ID, "error", err)
			s.registry.Add(sw.Session)
			continue
		}
		s.takeLevel(snap.ID)
		removed++
		s.logger.InfoContext(ctx, "stale session finished", "session_id", snap.ID, "user_id", snap.OwnerID, "wpm", rec.WPM)
	}
	return removed
}

// openSession returns a registered session the actor may drive. Sessions that
// were already persisted report ErrSessionAlreadyFinished.
func (s *Service) openSession(ctx context.Context, actor model.User, id string) (*session.Session, error) {
	sess, err := s.registry.Get(id)
	if err == nil {
		if err := authorize(actor, sess.OwnerID()); err != nil {
			return nil, err
		}
		return sess, nil
	}
	rec, serr := s.store.GetSession(ctx, id)
	if serr != nil {
		if errors.Is(serr, store.ErrNotFound) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", serr)
	}
	if err := authorize(actor, rec.UserID); err != nil {
		return nil, err
	}
	return nil, session.ErrSessionAlreadyFinished
}

func (s *Service) persist(ctx context.Context, snap session.Snapshot) (model.SessionRecord, error) {
	level := s.peekLevel(snap.ID)
	rec := recordFromSnapshot(snap, level)
	if err := s.store.InsertSession(ctx, rec); err != nil {
		// Keep the finished session registered so it stays readable.
		return model.SessionRecord{}, fmt.Errorf("failed to persist session: %w", err)
	}
	s.registry.Remove(snap.ID)
	s.takeLevel(snap.ID)
	return rec, nil
}

func (s *Service) peekLevel(id string) int {
	s.metaMu.Lock()
	defer s.metaMu.Unlock()
	return s.meta[id]
}

func (s *Service) takeLevel(id string) int {
	s.metaMu.Lock()
	defer s.metaMu.Unlock()
	level := s.meta[id]
	delete(s.meta, id)
	return level
}

func authorize(actor model.User, ownerID int64) error {
	if actor.ID == ownerID || actor.Role.CanProctor() {
		return nil
	}
	return ErrForbidden
}
