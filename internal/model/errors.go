package model

import (
	"errors"
	"fmt"
	"strings"
)

// Domain error taxonomy. Services return exactly one of these kinds for
// user-visible failures; controllers map them to HTTP statuses.
var (
	// ErrNotFound covers unknown ids and unrecognized status segments.
	ErrNotFound = errors.New("not found")

	// ErrForbidden covers every authorization failure: role, ownership
	// or state mismatch. Deliberately carries no detail about which
	// check failed.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition marks a (state, role, decision) combination
	// outside the transition table. Stored state is unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrConflict marks a lost transition race: the expected current
	// status was gone by the time the conditional update ran. Callers
	// should re-read and retry.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports malformed or missing input with field-level
// detail. No mutation is performed when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
