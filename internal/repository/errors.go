package repository

import (
	"errors"
	"fmt"
	"strings"

	"videoflow/internal/database"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned by update and delete operations that matched no row.
	// Reads report a missing row as a nil result instead.
	ErrNotFound = errors.New("not found")

	// ErrConstraint matches every *ConstraintError.
	ErrConstraint = errors.New("constraint violation")
)

// ValidationError reports a field rejected before any statement was issued.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError names the row an update or delete could not find.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConstraintError wraps a constraint failure reported by the storage engine,
// such as a duplicate tag name or a child row whose parent does not exist.
type ConstraintError struct {
	Op  string
	Err error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrConstraint, e.Err)
}

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraint }

func (e *ConstraintError) Unwrap() error { return e.Err }

// storageError classifies a failed statement for op.
func storageError(op string, err error) error {
	if database.IsConstraint(err) {
		return &ConstraintError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireText(entity, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Entity: entity, Field: field, Reason: "is required"}
	}
	return nil
}

func requireID(entity, field string, id int64) error {
	if id <= 0 {
		return &ValidationError{Entity: entity, Field: field, Reason: fmt.Sprintf("must be a positive id, got %d", id)}
	}
	return nil
}

func requireSequence(entity string, seq int64) error {
	if seq < 1 {
		return &ValidationError{Entity: entity, Field: "sequence number", Reason: fmt.Sprintf("must be at least 1, got %d", seq)}
	}
	return nil
}
