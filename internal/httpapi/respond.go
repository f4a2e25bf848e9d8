package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/verte-zerg/dmt/internal/auth"
	"github.com/verte-zerg/dmt/internal/observability"
	"github.com/verte-zerg/dmt/internal/practice"
	"github.com/verte-zerg/dmt/internal/session"
	"github.com/verte-zerg/dmt/internal/store"
)

var errAdminRequired = errors.New("admin access required")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErrorMessage(w, http.StatusBadRequest, msg)
}

// writeError maps domain errors to HTTP status codes. Unknown errors are
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidConfiguration):
		badRequest(w, err.Error())
	case errors.Is(err, session.ErrSessionAlreadyFinished):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrSessionNotFound):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicate):
		writeErrorMessage(w, http.StatusConflict, "already exists")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeErrorMessage(w, http.StatusUnauthorized, rootMessage(err))
	case errors.Is(err, practice.ErrForbidden), errors.Is(err, errAdminRequired):
		writeErrorMessage(w, http.StatusForbidden, rootMessage(err))
	default:
		observability.LoggerFromContext(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// rootMessage hides wrapped driver or parser detail behind the sentinel text.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		auth.ErrInvalidToken,
		auth.ErrInvalidCredentials,
		practice.ErrForbidden,
		errAdminRequired,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
