package sync

import (
	"errors"
	"fmt"
)

var (
	ErrCycleInProgress = errors.New("sync cycle already in progress")
	ErrDeviceNotFound  = errors.New("device not found")
)

// NetworkError marks a transient transport failure. The retry controller
// keeps retrying these; after exhaustion the affected records stay queued.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError is terminal for the current cycle: a 401-class response means the
// credential is missing, expired or wrong, and retrying without
// re-authenticating would only waste attempts.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication failed (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, e.Message)
}

// ValidationError marks a malformed request or response payload. Not
// retryable; the record is left unsynced and the cycle carries on.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error during %s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// FatalStorageError is a local durable-store write failure. The only class
// surfaced to the operator, since it threatens the local-first guarantee.
type FatalStorageError struct {
	Err error
}

func (e *FatalStorageError) Error() string {
	return fmt.Sprintf("local storage failure: %v", e.Err)
}

func (e *FatalStorageError) Unwrap() error { return e.Err }

// IsAuthError reports whether err is a 401-class failure anywhere in its chain.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsRetryable reports whether the retry controller should keep trying.
// Auth and validation failures are permanent for the current cycle.
func IsRetryable(err error) bool {
	var authErr *AuthError
	var valErr *ValidationError
	return !errors.As(err, &authErr) && !errors.As(err, &valErr)
}
