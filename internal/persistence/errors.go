package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrForeignKeyViolation is returned when a write references a missing parent row.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrConstraintViolation is returned for other CHECK or NOT NULL violations.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)

// Parent rows a reservation references.
const (
	ReferenceUser = "user"
	ReferenceSlot = "slot"
)

// ReferenceError names the parent row behind a foreign key violation.
// It unwraps to the underlying ErrForeignKeyViolation.
type ReferenceError struct {
	Reference string
	Err       error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("missing %s reference: %v", e.Reference, e.Err)
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}
