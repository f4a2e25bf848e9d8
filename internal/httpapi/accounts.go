package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/verte-zerg/dmt/internal/auth"
	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/session"
	"github.com/verte-zerg/dmt/internal/store"
)

const (
	minSchoolGroup = 3
	maxSchoolGroup = 8
)

// handleToken exchanges email and password for a bearer token. It accepts
// an OAuth2 password form (username, password) or a JSON body.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			badRequest(w, "invalid form body")
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	}
	email := req.Email
	if email == "" {
		email = req.Username
	}
	if strings.TrimSpace(email) == "" || req.Password == "" {
		badRequest(w, "username and password are required")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		// Unknown email and wrong password look the same to the caller.
		writeError(w, r, auth.ErrInvalidCredentials)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := auth.CheckPassword(user.HashedPassword, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	token, err := s.tokens.Issue(user.Email, string(user.Role))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// handleRegister creates a student account. Other roles are created by admins.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Role != "" && model.Role(req.Role) != model.RoleStudent {
		writeError(w, r, fmt.Errorf("%w: only students may self-register", errAdminRequired))
		return
	}
	req.Role = string(model.RoleStudent)
	s.createUser(w, r, req)
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, user model.User) {
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request, actor model.User) {
	if actor.Role != model.RoleAdmin {
		writeError(w, r, errAdminRequired)
		return
	}
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Role == "" {
		req.Role = string(model.RoleStudent)
	}
	s.createUser(w, r, req)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request, req createUserRequest) {
	user, err := validateUser(req)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user.HashedPassword = hash
	if err := s.store.CreateUser(r.Context(), &user); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func validateUser(req createUserRequest) (model.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	role := model.Role(req.Role)
	switch {
	case name == "":
		return model.User{}, errors.New("name is required")
	case !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@"):
		return model.User{}, errors.New("a valid email is required")
	case req.Password == "":
		return model.User{}, errors.New("password is required")
	case !role.Valid():
		return model.User{}, fmt.Errorf("unknown role %q", req.Role)
	case role == model.RoleStudent && (req.SchoolGroup < minSchoolGroup || req.SchoolGroup > maxSchoolGroup):
		return model.User{}, fmt.Errorf("school_group must be between %d and %d", minSchoolGroup, maxSchoolGroup)
	}
	return model.User{Name: name, Email: email, Role: role, SchoolGroup: req.SchoolGroup}, nil
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, actor model.User) {
	if actor.Role != model.RoleAdmin {
		writeError(w, r, errAdminRequired)
		return
	}
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, actor model.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if id != actor.ID && !actor.Role.CanProctor() {
		writeErrorMessage(w, http.StatusForbidden, "not authorized to view other users")
		return
	}
	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// parseLevel reads an optional level query parameter; zero means all levels.
func parseLevel(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("level")
	if raw == "" {
		return 0, nil
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level < 0 || level > 3 {
		return 0, fmt.Errorf("%w: level must be between 1 and 3", session.ErrInvalidConfiguration)
	}
	return level, nil
}
