package httpapi

import (
	"time"

	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/scoring"
	"github.com/verte-zerg/dmt/internal/session"
)

type tokenRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type createUserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Age         *int   `json:"age,omitempty"`
	SchoolGroup int    `json:"school_group"`
	Role        string `json:"role,omitempty"`
}

type userResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	SchoolGroup int    `json:"school_group"`
	Role        string `json:"role"`
}

type createWordRequest struct {
	Text            string `json:"text"`
	DifficultyLevel int    `json:"difficulty_level"`
	PatternTags     string `json:"pattern_tags"`
}

type wordResponse struct {
	ID              int64  `json:"id"`
	Text            string `json:"text"`
	DifficultyLevel int    `json:"difficulty_level"`
	PatternTags     string `json:"pattern_tags"`
}

type startSessionRequest struct {
	UserID          int64    `json:"user_id,omitempty"`
	DurationSeconds int      `json:"duration_seconds,omitempty"`
	Level           int      `json:"level,omitempty"`
	Words           []string `json:"words,omitempty"`
	CardSize        int      `json:"card_size,omitempty"`
	FocusWeak       bool     `json:"focus_weak,omitempty"`
}

type startSessionResponse struct {
	Session sessionResponse `json:"session"`
	Level   int             `json:"level"`
	Card    []string        `json:"card"`
}

type recordEventRequest struct {
	Word          string `json:"word"`
	Correct       *bool  `json:"correct"`
	SelfCorrected bool   `json:"self_corrected"`
}

type sessionResponse struct {
	ID              string          `json:"id"`
	UserID          int64           `json:"user_id"`
	Status          string          `json:"status"`
	DurationSeconds int             `json:"duration_seconds"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      *time.Time      `json:"finished_at,omitempty"`
	WordsPresented  []string        `json:"words_presented"`
	WordsRead       []string        `json:"words_read"`
	Errors          int             `json:"errors"`
	SelfCorrections int             `json:"self_corrections"`
	Result          *scoring.Result `json:"result,omitempty"`
}

type sessionRecordResponse struct {
	ID              string    `json:"id"`
	UserID          int64     `json:"user_id"`
	Level           int       `json:"level"`
	TotalWords      int       `json:"total_words"`
	CorrectWords    int       `json:"correct_words"`
	EffectiveErrors int       `json:"effective_errors"`
	DurationSeconds int       `json:"duration_seconds"`
	Errors          int       `json:"errors"`
	SelfCorrections int       `json:"self_corrections"`
	WPM             float64   `json:"wpm"`
	Accuracy        float64   `json:"accuracy"`
	WordsPresented  []string  `json:"words_presented"`
	WordsRead       []string  `json:"words_read"`
	CreatedAt       time.Time `json:"created_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

type statsResponse struct {
	TotalRequests  int64   `json:"total_requests"`
	AvgLatency     float64 `json:"avg_latency"`
	ActiveSessions int     `json:"active_sessions"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		SchoolGroup: u.SchoolGroup,
		Role:        string(u.Role),
	}
}

func toWordResponse(w model.Word) wordResponse {
	return wordResponse{
		ID:              w.ID,
		Text:            w.Text,
		DifficultyLevel: w.DifficultyLevel,
		PatternTags:     w.PatternTags,
	}
}

func toSessionResponse(snap session.Snapshot) sessionResponse {
	resp := sessionResponse{
		ID:              snap.ID,
		UserID:          snap.OwnerID,
		Status:          string(snap.Status),
		DurationSeconds: snap.DurationBudgetSeconds,
		StartedAt:       snap.OpenedAt,
		WordsPresented:  nonNil(snap.WordsPresented),
		WordsRead:       nonNil(snap.WordsRead),
		Errors:          snap.ErrorCount,
		SelfCorrections: snap.SelfCorrectionCount,
		Result:          snap.Result,
	}
	if !snap.FinishedAt.IsZero() {
		finished := snap.FinishedAt
		resp.FinishedAt = &finished
	}
	return resp
}

func toSessionRecordResponse(rec model.SessionRecord) sessionRecordResponse {
	return sessionRecordResponse{
		ID:              rec.ID,
		UserID:          rec.UserID,
		Level:           rec.Level,
		TotalWords:      len(rec.WordsPresented),
		CorrectWords:    rec.CorrectWords,
		EffectiveErrors: rec.EffectiveErrors,
		DurationSeconds: rec.DurationBudgetSeconds,
		Errors:          rec.Errors,
		SelfCorrections: rec.SelfCorrections,
		WPM:             rec.WPM,
		Accuracy:        rec.Accuracy,
		WordsPresented:  nonNil(rec.WordsPresented),
		WordsRead:       nonNil(rec.WordsRead),
		CreatedAt:       rec.StartedAt,
		FinishedAt:      rec.FinishedAt,
	}
}

func toSessionRecordsResponse(records []model.SessionRecord) []sessionRecordResponse {
	out := make([]sessionRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toSessionRecordResponse(rec))
	}
	return out
}

func nonNil(words []string) []string {
	if words == nil {
		return []string{}
	}
	return words
}
