// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound     = errors.New("not found")
	ErrDatabaseBusy = errors.New("database busy")

	// ErrConflict means a record changed between read and write. The whole
	// operation was rejected and can be retried from a fresh snapshot.
	ErrConflict = errors.New("conflicting update")
	// ErrInvalidState means a record is not in a state the operation allows.
	ErrInvalidState = errors.New("invalid state")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry. Conflicts are
// never retried here: the caller has to rebuild the operation from fresh data.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrConflict) {
		return false
	}

	// An explicit marker wins over the wrapped error.
	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return errors.Is(err, ErrDatabaseBusy) || errors.Is(err, context.DeadlineExceeded)
}
