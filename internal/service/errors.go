package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means the operation requires a known identity
	// and none is present.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the identity is known but not allowed to touch
	// the specific row.
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
)

// ValidationError rejects malformed input before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
