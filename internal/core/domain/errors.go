package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the subsystem's error taxonomy. Transport layers
// map these to status codes; anything else is treated as an internal failure.
var (
	// ErrInvalidCredentials covers both unknown-user and wrong-password so the
	// response never reveals which check failed.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	// ErrTokenCollision is returned by session repositories when a generated
	// token already exists. The authority retries; it never reaches callers.
	ErrTokenCollision = errors.New("session token collision")
	// ErrStorage wraps durable-state read/write failures. Never retried here;
	// retry policy belongs to the caller.
	ErrStorage = errors.New("storage failure")
)

// ValidationError reports a caller mistake in a single input field, with
// enough detail to correct the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageErrorf wraps an underlying I/O error into the storage category,
// keeping the cause available for logs via errors.Unwrap.
func StorageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStorage, fmt.Sprintf(format, args...))
}
