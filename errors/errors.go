// Package errors provides error types and handling for bucket pruning operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a pruning operation error with context about the operation
// that failed. It wraps the underlying transport or subprocess error with
// additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "listAll", "prune", "deleteMany")
	Op string

	// Bucket is the object-store bucket name (if applicable)
	Bucket string

	// Path is the object key or folder prefix (if applicable)
	Path string

	// Err is the underlying error from the store, the sync utility, or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Path != "" {
		return fmt.Sprintf("sweep.%s %s/%s: %v", e.Op, e.Bucket, e.Path, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("sweep.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("sweep.%s path %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("sweep.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithPath adds object key or prefix context to an existing error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewPathError creates a new Error with bucket and path context.
func NewPathError(op, bucket, path string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Path:   path,
		Err:    err,
	}
}

// Sentinel errors for the pruning failure taxonomy.
// These can be used with errors.Is() for error checking.
var (
	// ErrRateLimited indicates the store signalled a rate limit (HTTP 429/503
	// or an equivalent error payload). Retryable with backoff.
	ErrRateLimited = errors.New("sweep: rate limited")

	// ErrNotFound indicates the object or prefix does not exist. Deletion is
	// idempotent, so callers generally treat this as success.
	ErrNotFound = errors.New("sweep: not found")

	// ErrPageLimitExceeded indicates the pagination ceiling was reached and a
	// partial listing was returned.
	ErrPageLimitExceeded = errors.New("sweep: page limit exceeded")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("sweep: invalid input")

	// ErrMalformedResponse indicates the store returned a payload that could
	// not be decoded in either supported shape.
	ErrMalformedResponse = errors.New("sweep: malformed response")

	// ErrSyncToolUnavailable indicates the external sync utility could not be
	// invoked at all (missing binary, bad profile).
	ErrSyncToolUnavailable = errors.New("sweep: sync utility unavailable")

	// ErrMissingCredentials indicates no usable connection profile or access
	// keys were supplied.
	ErrMissingCredentials = errors.New("sweep: missing credentials")
)

// IsRateLimited checks if an error indicates a rate-limit signal.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsNotFound checks if an error indicates a missing object or prefix.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
