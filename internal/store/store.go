// Package store handles relational persistence of users, words and sessions.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "modernc.org/sqlite" // SQLite driver.
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("already exists")
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

// timeLayout keeps a fixed fraction width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQL access for users, words and sessions.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database described by url and creates missing tables.
// Postgres urls (postgres:// or postgresql://) use lib/pq; anything else is
// treated as a SQLite path, optionally prefixed with sqlite:///.
func Open(url string) (*Store, error) {
	driver, dsn, err := resolveDSN(url)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == driverSQLite {
		// SQLite does not support concurrent writers.
		db.SetMaxOpenConns(1)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

func resolveDSN(url string) (driver, dsn string, err error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", "", fmt.Errorf("database url is empty")
	}
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return driverPostgres, url, nil
	}
	path := strings.TrimPrefix(url, "sqlite:///")
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", "", fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return driverSQLite, path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	for _, stmt := range schema(s.db.DriverName()) {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// schema returns the table definitions for driver. Postgres REAL is float4,
// so scores use DOUBLE PRECISION there to read back exactly what was stored.
func schema(driver string) []string {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	floatColumn := "REAL"
	if driver == driverPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
		floatColumn = "DOUBLE PRECISION"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id ` + idColumn + `,
			email TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'student',
			school_group INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS words (
			id ` + idColumn + `,
			text TEXT NOT NULL UNIQUE,
			difficulty_level INTEGER NOT NULL DEFAULT 1,
			pattern_tags TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			level INTEGER NOT NULL DEFAULT 0,
			duration_seconds INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			words_presented TEXT NOT NULL,
			words_read TEXT NOT NULL,
			errors INTEGER NOT NULL,
			self_corrections INTEGER NOT NULL,
			correct_words INTEGER NOT NULL,
			effective_errors INTEGER NOT NULL,
			wpm ` + floatColumn + ` NOT NULL,
			accuracy ` + floatColumn + ` NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_started ON sessions(user_id, started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_words_level ON words(difficulty_level);`,
	}
}

// mapError translates driver errors into package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
