// Package model defines shared data structures.
package model

import "time"

// Role identifies what a user may do.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// CanProctor reports whether the role may view or drive other users' sessions.
func (r Role) CanProctor() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// User is an account of the practice application.
type User struct {
	ID             int64     `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	Name           string    `db:"name"`
	Role           Role      `db:"role"`
	SchoolGroup    int       `db:"school_group"`
	CreatedAt      time.Time `db:"created_at"`
}

// Word is a practice word with a DMT difficulty level (1-3).
type Word struct {
	ID              int64  `db:"id"`
	Text            string `db:"text"`
	DifficultyLevel int    `db:"difficulty_level"`
	PatternTags     string `db:"pattern_tags"`
}

// SessionRecord is a finished reading session as persisted.
type SessionRecord struct {
	ID                    string
	UserID                int64
	Level                 int
	DurationBudgetSeconds int
	StartedAt             time.Time
	FinishedAt            time.Time
	WordsPresented        []string
	WordsRead             []string
	Errors                int
	SelfCorrections       int
	CorrectWords          int
	EffectiveErrors       int
	WPM                   float64
	Accuracy              float64
}

// PracticeConfig defines settings for a proctored terminal session.
type PracticeConfig struct {
	UserEmail       string
	Level           int
	Words           int
	DurationSeconds int
	FocusWeak       bool
	WeakTop         int
	WeakFactor      float64
	WeakWindow      int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	UserID      int64
	Since       *time.Time
	Last        int
	CurveWindow int
	TopWords    int
}

// WordAggregate counts how often a word was presented and misread.
type WordAggregate struct {
	Word      string
	Presented int
	Misread   int
}
