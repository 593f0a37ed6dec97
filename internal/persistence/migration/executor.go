package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const createVersionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TEXT NOT NULL,
	checksum TEXT NOT NULL DEFAULT '',
	execution_time_ms INTEGER NOT NULL DEFAULT 0
)`

// SQLExecutor runs migrations through sqlx. Queries are written with ?
// placeholders and rebound for the connection's driver.
type SQLExecutor struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLExecutor returns an executor over db.
func NewSQLExecutor(db *sqlx.DB) *SQLExecutor {
	return &SQLExecutor{db: db, now: time.Now}
}

// InitializeVersionTable creates schema_migrations when missing.
func (e *SQLExecutor) InitializeVersionTable(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, createVersionTable); err != nil {
		return newError("", "", "create schema_migrations", err)
	}
	return nil
}

// ExecuteMigration runs every statement of m in one transaction.
func (e *SQLExecutor) ExecuteMigration(ctx context.Context, m Migration) (err error) {
	statements := splitStatements(m.SQL)
	if len(statements) == 0 {
		return newError(m.Version, m.FilePath, "parse SQL", fmt.Errorf("%w: no SQL statements", ErrInvalidMigrationFile))
	}

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return newError(m.Version, m.FilePath, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return newError(m.Version, m.FilePath, fmt.Sprintf("execute statement %d", i+1), err)
		}
	}
	if err = tx.Commit(); err != nil {
		return newError(m.Version, m.FilePath, "commit", err)
	}
	return nil
}

// RecordMigration stores m as applied.
func (e *SQLExecutor) RecordMigration(ctx context.Context, m Migration, executionTime time.Duration) error {
	query := e.db.Rebind(`INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (?, ?, ?, ?)`)
	appliedAt := e.now().UTC().Format(time.RFC3339)
	if _, err := e.db.ExecContext(ctx, query, m.Version, appliedAt, m.Checksum, executionTime.Milliseconds()); err != nil {
		return newError(m.Version, m.FilePath, "record migration", err)
	}
	return nil
}

type appliedRow struct {
	Version         string `db:"version"`
	AppliedAt       string `db:"applied_at"`
	Checksum        string `db:"checksum"`
	ExecutionTimeMs int64  `db:"execution_time_ms"`
}

// AppliedMigrations lists schema_migrations ordered by version.
func (e *SQLExecutor) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	var rows []appliedRow
	if err := e.db.SelectContext(ctx, &rows,
		`SELECT version, applied_at, checksum, execution_time_ms FROM schema_migrations ORDER BY version`); err != nil {
		return nil, newError("", "", "list applied migrations", err)
	}

	applied := make([]AppliedMigration, 0, len(rows))
	for _, r := range rows {
		at, err := time.Parse(time.RFC3339, r.AppliedAt)
		if err != nil {
			return nil, newError(r.Version, "", "parse applied_at", err)
		}
		applied = append(applied, AppliedMigration{
			Version:       r.Version,
			AppliedAt:     at,
			ExecutionTime: time.Duration(r.ExecutionTimeMs) * time.Millisecond,
			Checksum:      r.Checksum,
		})
	}
	return applied, nil
}
