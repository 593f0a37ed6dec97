// Package sqlstore implements the persistence repositories over sqlx.
//
// Queries use ? placeholders and are rebound for the connection's driver,
// so the same code serves SQLite and PostgreSQL. Driver specific error
// codes are translated by the Dialect supplied at construction.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/room-planner/internal/persistence"
)

// Dialect describes driver specific behavior.
type Dialect struct {
	Name string
	// MapError translates driver errors into persistence sentinels and
	// returns other errors unchanged.
	MapError func(error) error
	// Retryable reports transient failures such as lock contention.
	Retryable func(error) bool
}

// Store implements the user, room and reservation repositories.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	retry   RetryConfig
}

var (
	_ persistence.UserRepository        = (*Store)(nil)
	_ persistence.RoomRepository        = (*Store)(nil)
	_ persistence.ReservationRepository = (*Store)(nil)
)

// New wraps db. Zero-valued dialect hooks fall back to no-ops.
func New(db *sqlx.DB, dialect Dialect, retry RetryConfig) *Store {
	if dialect.MapError == nil {
		dialect.MapError = func(err error) error { return err }
	}
	if dialect.Retryable == nil {
		dialect.Retryable = func(error) bool { return false }
	}
	return &Store{db: db, dialect: dialect, retry: retry}
}

// DB exposes the connection for migrations and health checks.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Dialect returns the dialect name.
func (s *Store) Dialect() string {
	return s.dialect.Name
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

// mapError normalizes not-found and driver errors.
func (s *Store) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}
	return s.dialect.MapError(err)
}

// withTransaction commits when fn succeeds and rolls back otherwise.
func (s *Store) withTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", s.mapError(err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", s.mapError(err))
	}
	return nil
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func parseTimes(created, updated string) (time.Time, time.Time, error) {
	c, err := parseTime(created)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	u, err := parseTime(updated)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return c, u, nil
}
