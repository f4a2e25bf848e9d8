// Package httpapi exposes accounts, words and reading sessions over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"github.com/verte-zerg/dmt/internal/auth"
	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/practice"
)

// Store is the persistence used directly by handlers.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateWord(ctx context.Context, w *model.Word) error
	GetWord(ctx context.Context, id int64) (model.Word, error)
	ListWords(ctx context.Context, level int) ([]model.Word, error)
	Ping(ctx context.Context) error
}

// Speech serves the speech-to-text endpoints.
type Speech interface {
	Health(w http.ResponseWriter, r *http.Request)
	Transcribe(w http.ResponseWriter, r *http.Request)
}

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Store      Store
	Practice   *practice.Service
	Tokens     *auth.Issuer
	Speech     Speech
	CORSOrigin string
}

// Server routes requests to handlers.
type Server struct {
	store    Store
	practice *practice.Service
	tokens   *auth.Issuer
	latency  *latencyStats
}

// NewServer builds the HTTP handler with its middleware chain.
func NewServer(deps Deps) http.Handler {
	s := &Server{
		store:    deps.Store,
		practice: deps.Practice,
		tokens:   deps.Tokens,
		latency:  &latencyStats{},
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /stats", s.handleStats)

	mux.HandleFunc("POST /token", s.handleToken)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("GET /users/me", s.authed(s.handleMe))

	mux.HandleFunc("POST /user", s.authed(s.handleCreateUser))
	mux.HandleFunc("GET /user", s.authed(s.handleListUsers))
	mux.HandleFunc("GET /user/{id}", s.authed(s.handleGetUser))

	mux.HandleFunc("GET /word", s.handleListWords)
	mux.HandleFunc("GET /word/{id}", s.handleGetWord)
	mux.HandleFunc("POST /word", s.authed(s.handleCreateWord))

	mux.HandleFunc("POST /session/start", s.authed(s.handleStartSession))
	mux.HandleFunc("POST /session/{id}/events", s.authed(s.handleRecordEvent))
	mux.HandleFunc("POST /session/{id}/finish", s.authed(s.handleFinishSession))
	mux.HandleFunc("GET /session/me", s.authed(s.handleMySessions))
	mux.HandleFunc("GET /session/user/{id}", s.authed(s.handleUserSessions))
	mux.HandleFunc("GET /session/{id}", s.authed(s.handleGetSession))

	if deps.Speech != nil {
		mux.HandleFunc("GET /api/speech/health", deps.Speech.Health)
		mux.HandleFunc("GET /api/speech/transcribe", deps.Speech.Transcribe)
	}

	return chainMiddlewares(mux,
		withLogging,
		withLatency(s.latency),
		withCORS(deps.CORSOrigin),
		withRequestID,
	)
}

type authedHandler func(w http.ResponseWriter, r *http.Request, user model.User)

// authed resolves the bearer token to a user before calling h.
func (s *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.currentUser(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		h(w, r, user)
	}
}

func (s *Server) currentUser(r *http.Request) (model.User, error) {
	raw, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return model.User{}, err
	}
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return model.User{}, err
	}
	user, err := s.store.GetUserByEmail(r.Context(), claims.Subject)
	if err != nil {
		// A token for a deleted account is not a valid credential.
		return model.User{}, auth.ErrInvalidToken
	}
	return user, nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeErrorMessage(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	total, avg := s.latency.snapshot()
	writeJSON(w, http.StatusOK, statsResponse{
		TotalRequests:  total,
		AvgLatency:     avg,
		ActiveSessions: s.practice.OpenCount(),
	})
}
