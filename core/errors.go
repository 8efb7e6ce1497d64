package core

import (
	"errors"
	"strings"
)

// Domain errors, typed by cause. Callers branch with errors.Is; storage
// failures are never wrapped into these.
var (
	// ErrNotFound means the operation referenced an unknown record or break.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState means the record's lifecycle state forbids the
	// operation.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict means a precondition race, e.g. a concurrent double
	// clock-in. Callers must re-read state before retrying.
	ErrConflict = errors.New("conflict")
)

// ValidationError aggregates every rule violation from break or entry
// validation, not just the first one. Warnings ride along but never block.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
