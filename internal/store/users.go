package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/dmt/internal/model"
)

type userRow struct {
	ID             int64  `db:"id"`
	Email          string `db:"email"`
	HashedPassword string `db:"hashed_password"`
	Name           string `db:"name"`
	Role           string `db:"role"`
	SchoolGroup    int    `db:"school_group"`
	CreatedAt      string `db:"created_at"`
}

func (r userRow) toModel() (model.User, error) {
	created, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse user created_at: %w", err)
	}
	return model.User{
		ID:             r.ID,
		Email:          r.Email,
		HashedPassword: r.HashedPassword,
		Name:           r.Name,
		Role:           model.Role(r.Role),
		SchoolGroup:    r.SchoolGroup,
		CreatedAt:      created,
	}, nil
}

const userColumns = `id, email, hashed_password, name, role, school_group, created_at`

// CreateUser inserts a user and sets its ID and CreatedAt.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = model.RoleStudent
	}
	query := s.db.Rebind(`INSERT INTO users (email, hashed_password, name, role, school_group, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := s.db.QueryRowxContext(ctx, query,
		normalizeEmail(u.Email),
		u.HashedPassword,
		u.Name,
		string(u.Role),
		u.SchoolGroup,
		u.CreatedAt.Format(timeLayout),
	).Scan(&u.ID)
	if err != nil {
		return mapError(err)
	}
	u.Email = normalizeEmail(u.Email)
	return nil
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(ctx context.Context, id int64) (model.User, error) {
	var row userRow
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		return model.User{}, mapError(err)
	}
	return row.toModel()
}

// GetUserByEmail returns the user registered with email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var row userRow
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	if err := s.db.GetContext(ctx, &row, query, normalizeEmail(email)); err != nil {
		return model.User{}, mapError(err)
	}
	return row.toModel()
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY id ASC`); err != nil {
		return nil, mapError(err)
	}
	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		u, err := row.toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
