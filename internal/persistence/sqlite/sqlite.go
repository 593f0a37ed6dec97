// Package sqlite opens the reservation store on an embedded SQLite database
// using the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/example/room-planner/internal/persistence/migration"
	"github.com/example/room-planner/internal/persistence/sqlstore"
)

const driverName = "sqlite"

//go:embed migrations/*.sql
var migrationFiles embed.FS

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// Dialect returns the SQLite error handling hooks.
func Dialect() sqlstore.Dialect {
	return sqlstore.Dialect{Name: driverName, MapError: MapError, Retryable: Retryable}
}

// Open connects to the database described by cfg. It does not migrate.
func Open(ctx context.Context, cfg Config) (*sqlstore.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ensureDirectory(); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
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
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	return sqlstore.New(db, Dialect(), sqlstore.DefaultRetryConfig()), nil
}

// Migrate applies the embedded schema migrations and returns the versions applied.
func Migrate(ctx context.Context, store *sqlstore.Store, logger *slog.Logger) ([]string, error) {
	return NewMigrationManager(store, logger).Run(ctx)
}

// NewMigrationManager returns a manager over the embedded SQLite migrations.
func NewMigrationManager(store *sqlstore.Store, logger *slog.Logger) *migration.Manager {
	return migration.NewManager(
		migration.NewFSScanner(migrationFiles),
		migration.NewSQLExecutor(store.DB()),
		"migrations",
		logger,
	)
}
