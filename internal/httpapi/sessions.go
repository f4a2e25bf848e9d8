package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/practice"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request, actor model.User) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid JSON body")
		return
	}
	words := make([]string, 0, len(req.Words))
	for _, word := range req.Words {
		if word = strings.TrimSpace(word); word != "" {
			words = append(words, word)
		}
	}
	out, err := s.practice.StartSession(r.Context(), practice.StartSessionInput{
		Actor:           actor,
		UserID:          req.UserID,
		Level:           req.Level,
		DurationSeconds: req.DurationSeconds,
		Words:           words,
		CardSize:        req.CardSize,
		FocusWeak:       req.FocusWeak,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, startSessionResponse{
		Session: toSessionResponse(out.Session),
		Level:   out.Level,
		Card:    out.Card,
	})
}

func (s *Server) handleRecordEvent(w http.ResponseWriter, r *http.Request, actor model.User) {
	var req recordEventRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Correct == nil {
		badRequest(w, "correct is required")
		return
	}
	snap, err := s.practice.RecordEvent(r.Context(), actor, r.PathValue("id"), req.Word, *req.Correct, req.SelfCorrected)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(snap))
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request, actor model.User) {
	rec, err := s.practice.FinishSession(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionRecordResponse(rec))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, actor model.User) {
	snap, err := s.practice.GetSession(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(snap))
}

func (s *Server) handleMySessions(w http.ResponseWriter, r *http.Request, actor model.User) {
	records, err := s.practice.ListSessions(r.Context(), actor, actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionRecordsResponse(records))
}

func (s *Server) handleUserSessions(w http.ResponseWriter, r *http.Request, actor model.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	records, err := s.practice.ListSessions(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionRecordsResponse(records))
}
