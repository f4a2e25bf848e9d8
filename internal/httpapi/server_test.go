package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/dmt/internal/auth"
	"github.com/verte-zerg/dmt/internal/generator"
	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/practice"
	"github.com/verte-zerg/dmt/internal/store"
)

type testEnv struct {
	srv *httptest.Server
	st  *store.Store
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "dmt.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	for _, w := range []model.Word{
		{Text: "kat", DifficultyLevel: 1},
		{Text: "boom", DifficultyLevel: 1},
		{Text: "fiets", DifficultyLevel: 2},
	} {
		w := w
		if err := st.CreateWord(context.Background(), &w); err != nil {
			t.Fatalf("create word: %v", err)
		}
	}
	tokens, err := auth.NewIssuer([]byte("test-secret-key-for-signing"), time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc := practice.NewService(st, generator.NewWithSeed(1), logger, practice.Options{DefaultDuration: 60, StaleAfter: time.Minute, CardSize: 4})
	srv := httptest.NewServer(NewServer(Deps{
		Store:      st,
		Practice:   svc,
		Tokens:     tokens,
		CORSOrigin: "*",
	}))
	t.Cleanup(srv.Close)
	return testEnv{srv: srv, st: st}
}

// createAccount stores a user directly, bypassing self-registration limits.
func (e testEnv) createAccount(t *testing.T, email string, role model.Role) model.User {
	t.Helper()
	hash, err := auth.HashPassword("password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := model.User{Email: email, HashedPassword: hash, Name: email, Role: role, SchoolGroup: 5}
	if err := e.st.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func (e testEnv) login(t *testing.T, email string) string {
	t.Helper()
	form := url.Values{"username": {email}, "password": {"password"}}
	resp, err := e.srv.Client().Post(e.srv.URL+"/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("post token: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /token, got %d", resp.StatusCode)
	}
	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if tok.TokenType != "bearer" || tok.AccessToken == "" {
		t.Fatalf("unexpected token response: %+v", tok)
	}
	return tok.AccessToken
}

func decodeBody[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestRegisterLoginAndReadSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp, data := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"name": "Sophie", "email": "sophie@example.com", "password": "password", "school_group": 3,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d: %s", resp.StatusCode, data)
	}
	if u := decodeBody[userResponse](t, data); u.Role != "student" || u.SchoolGroup != 3 {
		t.Fatalf("unexpected user: %+v", u)
	}
	token := env.login(t, "sophie@example.com")

	resp, data = env.do(t, http.MethodGet, "/users/me", token, nil)
	if resp.StatusCode != http.StatusOK || decodeBody[userResponse](t, data).Email != "sophie@example.com" {
		t.Fatalf("unexpected /users/me: %d %s", resp.StatusCode, data)
	}

	resp, data = env.do(t, http.MethodPost, "/session/start", token, map[string]any{"level": 1})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from start, got %d: %s", resp.StatusCode, data)
	}
	started := decodeBody[startSessionResponse](t, data)
	if started.Session.Status != "open" || len(started.Card) != 4 {
		t.Fatalf("unexpected start response: %+v", started)
	}
	for _, w := range started.Card {
		if w == "fiets" {
			t.Fatalf("level 2 word in level 1 card: %v", started.Card)
		}
	}
	id := started.Session.ID

	for _, ev := range []map[string]any{
		{"word": "kat", "correct": true},
		{"word": "boom", "correct": false, "self_corrected": true},
	} {
		resp, data = env.do(t, http.MethodPost, "/session/"+id+"/events", token, ev)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 from events, got %d: %s", resp.StatusCode, data)
		}
	}
	open := decodeBody[sessionResponse](t, data)
	if len(open.WordsPresented) != 2 || open.Errors != 1 || open.SelfCorrections != 1 {
		t.Fatalf("unexpected open session: %+v", open)
	}

	resp, data = env.do(t, http.MethodPost, "/session/"+id+"/finish", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from finish, got %d: %s", resp.StatusCode, data)
	}
	rec := decodeBody[sessionRecordResponse](t, data)
	// 1 read, 1 self-corrected error over 60s.
	if rec.CorrectWords != 1 || rec.EffectiveErrors != 0 || rec.WPM != 1.0 || rec.Accuracy != 1.0 || rec.TotalWords != 2 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	resp, data = env.do(t, http.MethodPost, "/session/"+id+"/finish", token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on re-finish, got %d: %s", resp.StatusCode, data)
	}
	resp, _ = env.do(t, http.MethodPost, "/session/"+id+"/events", token, map[string]any{"word": "kat", "correct": true})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on event after finish, got %d", resp.StatusCode)
	}

	resp, data = env.do(t, http.MethodGet, "/session/"+id, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for finished session, got %d", resp.StatusCode)
	}
	if got := decodeBody[sessionResponse](t, data); got.Status != "finished" || got.Result == nil {
		t.Fatalf("unexpected finished session: %+v", got)
	}

	resp, data = env.do(t, http.MethodGet, "/session/me", token, nil)
	if resp.StatusCode != http.StatusOK || len(decodeBody[[]sessionRecordResponse](t, data)) != 1 {
		t.Fatalf("unexpected /session/me: %d %s", resp.StatusCode, data)
	}
}

func TestRegisterRejectsStaffRolesAndDuplicates(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"name": "Juf", "email": "juf@example.com", "password": "password", "role": "teacher",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for teacher self-registration, got %d", resp.StatusCode)
	}

	body := map[string]any{"name": "Liam", "email": "liam@example.com", "password": "password", "school_group": 5}
	if resp, data := env.do(t, http.MethodPost, "/register", "", body); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, data)
	}
	if resp, _ := env.do(t, http.MethodPost, "/register", "", body); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}

	body["email"] = "emma@example.com"
	body["school_group"] = 9
	if resp, _ := env.do(t, http.MethodPost, "/register", "", body); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for school group 9, got %d", resp.StatusCode)
	}
}

func TestAuthErrors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.createAccount(t, "sophie@example.com", model.RoleStudent)

	resp, _ := env.do(t, http.MethodGet, "/users/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	if resp.Header.Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("expected WWW-Authenticate header, got %q", resp.Header.Get("WWW-Authenticate"))
	}
	if resp, _ := env.do(t, http.MethodGet, "/users/me", "not-a-token", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", resp.StatusCode)
	}

	resp, _ = env.do(t, http.MethodPost, "/token", "", map[string]string{"email": "sophie@example.com", "password": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodPost, "/token", "", map[string]string{"email": "nobody@example.com", "password": "password"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", resp.StatusCode)
	}
}

func TestSessionOwnership(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	sophie := env.createAccount(t, "sophie@example.com", model.RoleStudent)
	env.createAccount(t, "liam@example.com", model.RoleStudent)
	env.createAccount(t, "juf@example.com", model.RoleTeacher)

	sophieToken := env.login(t, "sophie@example.com")
	liamToken := env.login(t, "liam@example.com")
	teacherToken := env.login(t, "juf@example.com")

	resp, data := env.do(t, http.MethodPost, "/session/start", sophieToken, map[string]any{"words": []string{"kat", "boom"}})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, data)
	}
	id := decodeBody[startSessionResponse](t, data).Session.ID

	if resp, _ := env.do(t, http.MethodPost, "/session/"+id+"/events", liamToken, map[string]any{"word": "kat", "correct": true}); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for another student, got %d", resp.StatusCode)
	}
	if resp, _ := env.do(t, http.MethodPost, "/session/"+id+"/events", teacherToken, map[string]any{"word": "kat", "correct": true}); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected teacher to proctor, got %d", resp.StatusCode)
	}
	if resp, _ := env.do(t, http.MethodPost, "/session/"+id+"/events", sophieToken, map[string]any{"word": "kat"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 when correct is missing, got %d", resp.StatusCode)
	}
	if resp, _ := env.do(t, http.MethodPost, "/session/unknown/finish", sophieToken, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", resp.StatusCode)
	}

	resp, data = env.do(t, http.MethodPost, "/session/start", teacherToken, map[string]any{"user_id": sophie.ID, "level": 2})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected teacher to start a session for a student, got %d: %s", resp.StatusCode, data)
	}
	if got := decodeBody[startSessionResponse](t, data); got.Session.UserID != sophie.ID || got.Level != 2 {
		t.Fatalf("unexpected proctored session: %+v", got)
	}
	if resp, _ := env.do(t, http.MethodPost, "/session/start", liamToken, map[string]any{"user_id": sophie.ID}); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for student starting another reader, got %d", resp.StatusCode)
	}
	if resp, _ := env.do(t, http.MethodPost, "/session/start", sophieToken, map[string]any{"duration_seconds": -5, "words": []string{"kat"}}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative duration, got %d", resp.StatusCode)
	}
	if resp, _ := env.do(t, http.MethodGet, "/session/user/"+itoa(sophie.ID), liamToken, nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for another student's history, got %d", resp.StatusCode)
	}
	if resp, _ := env.do(t, http.MethodGet, "/session/user/"+itoa(sophie.ID), teacherToken, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected teacher to read history, got %d", resp.StatusCode)
	}
}

func TestWordsAndAdminRoutes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.createAccount(t, "sophie@example.com", model.RoleStudent)
	env.createAccount(t, "juf@example.com", model.RoleTeacher)
	env.createAccount(t, "admin@example.com", model.RoleAdmin)
	student := env.login(t, "sophie@example.com")
	teacher := env.login(t, "juf@example.com")
	admin := env.login(t, "admin@example.com")

	resp, data := env.do(t, http.MethodGet, "/word?level=1", "", nil)
	if resp.StatusCode != http.StatusOK || len(decodeBody[[]wordResponse](t, data)) != 2 {
		t.Fatalf("unexpected level 1 words: %d %s", resp.StatusCode, data)
	}
	if resp, _ := env.do(t, http.MethodGet, "/word?level=7", "", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for level 7, got %d", resp.StatusCode)
	}

	if resp, _ := env.do(t, http.MethodPost, "/word", student, map[string]any{"text": "school"}); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for student word create, got %d", resp.StatusCode)
	}
	resp, data = env.do(t, http.MethodPost, "/word", teacher, map[string]any{"text": "Bibliotheek"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, data)
	}
	word := decodeBody[wordResponse](t, data)
	if word.Text != "bibliotheek" || word.DifficultyLevel != 3 {
		t.Fatalf("unexpected word: %+v", word)
	}
	if resp, _ := env.do(t, http.MethodGet, "/word/"+itoa(word.ID), "", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for word, got %d", resp.StatusCode)
	}
	if resp, _ := env.do(t, http.MethodGet, "/word/999", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing word, got %d", resp.StatusCode)
	}

	if resp, _ := env.do(t, http.MethodGet, "/user", teacher, nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for teacher listing users, got %d", resp.StatusCode)
	}
	resp, data = env.do(t, http.MethodPost, "/user", admin, map[string]any{
		"name": "Meester", "email": "meester@example.com", "password": "password", "role": "teacher",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for admin create, got %d: %s", resp.StatusCode, data)
	}
	resp, data = env.do(t, http.MethodGet, "/user", admin, nil)
	if resp.StatusCode != http.StatusOK || len(decodeBody[[]userResponse](t, data)) != 4 {
		t.Fatalf("unexpected user list: %d %s", resp.StatusCode, data)
	}
}

func TestHealthAndStats(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp, data := env.do(t, http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected CORS header, got %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}
	if got := decodeBody[map[string]string](t, data); got["status"] != "ok" {
		t.Fatalf("unexpected health: %v", got)
	}

	resp, data = env.do(t, http.MethodGet, "/stats", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	stats := decodeBody[statsResponse](t, data)
	// Only the finished healthz request is counted so far.
	if stats.TotalRequests != 1 || stats.ActiveSessions != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
