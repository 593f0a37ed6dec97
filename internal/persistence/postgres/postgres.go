// Package postgres opens the reservation store on PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/example/room-planner/internal/persistence"
	"github.com/example/room-planner/internal/persistence/migration"
	"github.com/example/room-planner/internal/persistence/sqlstore"
)

const driverName = "postgres"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// SQLSTATE codes handled by MapError and Retryable.
const (
	codeUniqueViolation      = pq.ErrorCode("23505")
	codeForeignKeyViolation  = pq.ErrorCode("23503")
	codeCheckViolation       = pq.ErrorCode("23514")
	codeNotNullViolation     = pq.ErrorCode("23502")
	codeSerializationFailure = pq.ErrorCode("40001")
	codeDeadlockDetected     = pq.ErrorCode("40P01")
)

// Config controls the connection pool.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns pool settings for dsn.
func DefaultConfig(dsn string) Config {
	return Config{DSN: dsn, MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxLifetime: 30 * time.Minute}
}

// Dialect returns the PostgreSQL error handling hooks.
func Dialect() sqlstore.Dialect {
	return sqlstore.Dialect{Name: driverName, MapError: MapError, Retryable: Retryable}
}

// Open connects to PostgreSQL. It does not migrate.
func Open(ctx context.Context, cfg Config) (*sqlstore.Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres: dsn is required")
	}
	db, err := sqlx.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres database: %w", err)
	}
	return sqlstore.New(db, Dialect(), sqlstore.DefaultRetryConfig()), nil
}

// Migrate applies the embedded schema migrations and returns the versions applied.
func Migrate(ctx context.Context, store *sqlstore.Store, logger *slog.Logger) ([]string, error) {
	mgr := migration.NewManager(
		migration.NewFSScanner(migrationFiles),
		migration.NewSQLExecutor(store.DB()),
		"migrations",
		logger,
	)
	return mgr.Run(ctx)
}

// MapError translates SQLSTATE integrity violations into persistence sentinels.
func MapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s (%s)", persistence.ErrDuplicate, pqErr.Message, pqErr.Constraint)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s (%s)", persistence.ErrForeignKeyViolation, pqErr.Message, pqErr.Constraint)
	case codeCheckViolation, codeNotNullViolation:
		return fmt.Errorf("%w: %s", persistence.ErrConstraintViolation, pqErr.Message)
	}
	return err
}

// Retryable reports serialization failures and deadlocks.
func Retryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
}
