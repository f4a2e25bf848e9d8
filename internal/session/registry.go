package session

import (
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when no open session has the given id.
var ErrSessionNotFound = errors.New("session not found")

// Registry tracks sessions that are still being recorded, keyed by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// OpenLen returns the number of tracked sessions that still accept events.
func (r *Registry) OpenLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.sessions {
		if s.open() {
			n++
		}
	}
	return n
}

// Swept is a session removed from the registry by Sweep.
type Swept struct {
	Session *Session
	// Expired is set when the sweep itself finished the session.
	Expired bool
}

// Sweep removes sessions a sweep at now is done waiting for. Open sessions
// whose budget plus grace elapsed are finished first, so any holder of the
// pointer gets ErrSessionAlreadyFinished from then on. Finished sessions
// still registered grace after finishing are removed too.
func (r *Registry) Sweep(now time.Time, grace time.Duration) []Swept {
	r.mu.Lock()
	defer r.mu.Unlock()

	var swept []Swept
	for id, s := range r.sessions {
		remove, expired := s.reap(now, grace)
		if !remove {
			continue
		}
		swept = append(swept, Swept{Session: s, Expired: expired})
		delete(r.sessions, id)
	}
	return swept
}
