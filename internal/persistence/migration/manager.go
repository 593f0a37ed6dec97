package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Manager applies pending migrations in version order.
type Manager struct {
	scanner  Scanner
	executor Executor
	dir      string
	logger   *slog.Logger
}

// NewManager returns a manager reading migrations from dir.
func NewManager(scanner Scanner, executor Executor, dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{scanner: scanner, executor: executor, dir: dir, logger: logger.With("component", "migration")}
}

// Run applies every pending migration and returns the versions it applied.
func (m *Manager) Run(ctx context.Context) ([]string, error) {
	status, err := m.Status(ctx)
	if err != nil {
		return nil, err
	}
	if len(status.PendingMigrations) == 0 {
		m.logger.InfoContext(ctx, "schema up to date", "version", status.CurrentVersion)
		return nil, nil
	}

	applied := make([]string, 0, len(status.PendingMigrations))
	for _, mig := range status.PendingMigrations {
		started := time.Now()
		if err := m.executor.ExecuteMigration(ctx, mig); err != nil {
			m.logger.ErrorContext(ctx, "migration failed", "version", mig.Version, "file", mig.FilePath, "error", err)
			return applied, newError(mig.Version, mig.FilePath, "execute", fmt.Errorf("%w: %w", ErrMigrationFailed, err))
		}
		elapsed := time.Since(started)
		if err := m.executor.RecordMigration(ctx, mig, elapsed); err != nil {
			return applied, err
		}
		m.logger.InfoContext(ctx, "migration applied",
			"version", mig.Version,
			"description", mig.Description,
			"duration", elapsed,
		)
		applied = append(applied, mig.Version)
	}
	return applied, nil
}

// Status compares the files on disk with schema_migrations.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}
	available, err := m.scanner.ScanMigrations(m.dir)
	if err != nil {
		return Status{}, err
	}
	applied, err := m.executor.AppliedMigrations(ctx)
	if err != nil {
		return Status{}, err
	}
	if err := validateSequence(available, applied); err != nil {
		return Status{}, err
	}

	appliedSet := make(map[int]struct{}, len(applied))
	current := ""
	for _, a := range applied {
		appliedSet[versionNumber(a.Version)] = struct{}{}
		if current == "" || versionNumber(a.Version) > versionNumber(current) {
			current = a.Version
		}
	}

	var pending []Migration
	for _, mig := range available {
		if _, ok := appliedSet[versionNumber(mig.Version)]; !ok {
			pending = append(pending, mig)
		}
	}
	return Status{CurrentVersion: current, AppliedMigrations: applied, PendingMigrations: pending}, nil
}

// validateSequence rejects gaps, applied versions without a file and edited files.
func validateSequence(available []Migration, applied []AppliedMigration) error {
	byVersion := make(map[int]Migration, len(available))
	for _, mig := range available {
		byVersion[versionNumber(mig.Version)] = mig
	}
	if len(available) > 0 {
		first := versionNumber(available[0].Version)
		last := versionNumber(available[len(available)-1].Version)
		for v := first; v <= last; v++ {
			if _, ok := byVersion[v]; !ok {
				return fmt.Errorf("%w: missing migration version %03d", ErrVersionConflict, v)
			}
		}
	}
	for _, a := range applied {
		mig, ok := byVersion[versionNumber(a.Version)]
		if !ok {
			return fmt.Errorf("%w: applied migration %s has no file", ErrVersionConflict, a.Version)
		}
		if a.Checksum != "" && a.Checksum != mig.Checksum {
			return newError(a.Version, mig.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}
	return nil
}
