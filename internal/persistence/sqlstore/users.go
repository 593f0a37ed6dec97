package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/room-planner/internal/persistence"
)

type userRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	IsAdmin      bool   `db:"is_admin"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

func (r userRow) record() (persistence.User, error) {
	created, updated, err := parseTimes(r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return persistence.User{}, err
	}
	return persistence.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		IsAdmin:      r.IsAdmin,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}, nil
}

const userColumns = `id, name, email, password_hash, is_admin, created_at, updated_at`

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts user. A taken email yields persistence.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || strings.TrimSpace(user.Email) == "" {
		return persistence.ErrConstraintViolation
	}
	query := s.q(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	return s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			user.ID,
			user.Name,
			normalizeEmail(user.Email),
			user.PasswordHash,
			user.IsAdmin,
			formatTime(user.CreatedAt),
			formatTime(user.UpdatedAt),
		)
		return s.mapError(err)
	})
}

// GetUser loads a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByEmail loads a user by case-insensitive email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalizeEmail(email))
}

func (s *Store) getUser(ctx context.Context, query string, arg string) (persistence.User, error) {
	if arg == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	var row userRow
	if err := s.db.GetContext(ctx, &row, s.q(query), arg); err != nil {
		return persistence.User{}, s.mapError(err)
	}
	user, err := row.record()
	if err != nil {
		return persistence.User{}, fmt.Errorf("decode user %s: %w", row.ID, err)
	}
	return user, nil
}
