// Package errors provides the error taxonomy for quiver.
//
// All caller-facing failures are classified with a stable type string so the
// tool dispatch layer can report them as structured failure results. None of
// these errors are retried by the server itself.
package errors

import (
	"errors"
	"fmt"
)

// Error types
const (
	// ErrUnknownCluster is returned when a cluster name is not in the registry
	ErrUnknownCluster = "unknown_cluster"

	// ErrInvalidURL is returned when a malformed URL is passed to dynamic registration
	ErrInvalidURL = "invalid_url"

	// ErrConflictingClusterSelectors is returned when both a cluster name and a cluster URL are given
	ErrConflictingClusterSelectors = "conflicting_cluster_selectors"

	// ErrRateLimitExceeded is returned when the sliding window for a key is exhausted
	ErrRateLimitExceeded = "rate_limit_exceeded"

	// ErrInvalidCursor is returned when a scroll cursor fails to decode
	ErrInvalidCursor = "invalid_cursor"

	// ErrBackendUnavailable is returned when the backend rejected or failed a request
	ErrBackendUnavailable = "backend_unavailable"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewUnknownClusterError creates a new unknown cluster error
func NewUnknownClusterError(message string, cause error) *Error {
	return NewError(ErrUnknownCluster, message, cause)
}

// NewInvalidURLError creates a new invalid URL error
func NewInvalidURLError(message string, cause error) *Error {
	return NewError(ErrInvalidURL, message, cause)
}

// NewConflictingClusterSelectorsError creates a new conflicting cluster selectors error
func NewConflictingClusterSelectorsError(message string) *Error {
	return NewError(ErrConflictingClusterSelectors, message, nil)
}

// NewRateLimitExceededError creates a new rate limit exceeded error
func NewRateLimitExceededError(message string) *Error {
	return NewError(ErrRateLimitExceeded, message, nil)
}

// NewInvalidCursorError creates a new invalid cursor error
func NewInvalidCursorError(message string, cause error) *Error {
	return NewError(ErrInvalidCursor, message, cause)
}

// NewBackendUnavailableError creates a new backend unavailable error
func NewBackendUnavailableError(message string, cause error) *Error {
	return NewError(ErrBackendUnavailable, message, cause)
}

// typeOf extracts the taxonomy type from err, unwrapping as needed.
func typeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}

// IsUnknownCluster checks if the error is an unknown cluster error
func IsUnknownCluster(err error) bool {
	return typeOf(err) == ErrUnknownCluster
}

// IsInvalidURL checks if the error is an invalid URL error
func IsInvalidURL(err error) bool {
	return typeOf(err) == ErrInvalidURL
}

// IsConflictingClusterSelectors checks if the error is a conflicting cluster selectors error
func IsConflictingClusterSelectors(err error) bool {
	return typeOf(err) == ErrConflictingClusterSelectors
}

// IsRateLimitExceeded checks if the error is a rate limit exceeded error
func IsRateLimitExceeded(err error) bool {
	return typeOf(err) == ErrRateLimitExceeded
}

// IsInvalidCursor checks if the error is an invalid cursor error
func IsInvalidCursor(err error) bool {
	return typeOf(err) == ErrInvalidCursor
}

// IsBackendUnavailable checks if the error is a backend unavailable error
func IsBackendUnavailable(err error) bool {
	return typeOf(err) == ErrBackendUnavailable
}
