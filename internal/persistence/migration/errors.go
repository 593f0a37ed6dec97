package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMigrationFile indicates a badly named or empty migration file.
	ErrInvalidMigrationFile = errors.New("invalid migration file")
	// ErrDuplicateVersion indicates two files sharing a version.
	ErrDuplicateVersion = errors.New("duplicate migration version")
	// ErrVersionConflict indicates a gap in the sequence or an applied version without a file.
	ErrVersionConflict = errors.New("migration version conflict")
	// ErrChecksumMismatch indicates an applied file that was edited afterwards.
	ErrChecksumMismatch = errors.New("migration checksum mismatch")
	// ErrMigrationFailed indicates that executing a migration failed.
	ErrMigrationFailed = errors.New("migration execution failed")
)

// Error adds version and operation context to a migration failure.
type Error struct {
	Version   string
	FilePath  string
	Operation string
	Err       error
}

func (e *Error) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("migration %s (%s): %s: %v", e.Version, e.FilePath, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration (%s): %s: %v", e.FilePath, e.Operation, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(version, filePath, operation string, err error) *Error {
	return &Error{Version: version, FilePath: filePath, Operation: operation, Err: err}
}
