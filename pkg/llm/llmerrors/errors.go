// Package llmerrors provides structured error classification for provider API interactions.
package llmerrors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of provider errors for retry logic.
type ErrorType int8

const (
	// Retryable error types.

	// ErrorTypeRateLimit represents rate limiting errors (429, quota exceeded).
	ErrorTypeRateLimit ErrorType = iota
	// ErrorTypeServer represents 5xx-class provider failures.
	ErrorTypeServer
	// ErrorTypeTimeout represents a per-call network timeout.
	ErrorTypeTimeout
	// ErrorTypeUnreachable represents connection-level failures (refused, reset, DNS).
	ErrorTypeUnreachable

	// Non-retryable error types.

	// ErrorTypeClient represents any other provider rejection (bad request, auth, policy).
	ErrorTypeClient
	// ErrorTypeStructuredOutputUnavailable indicates the adapter cannot honor a
	// structured-output requirement for the requested model.
	ErrorTypeStructuredOutputUnavailable
)

// String returns the string representation of the error type.
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeServer:
		return "server_error"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeUnreachable:
		return "unreachable"
	case ErrorTypeClient:
		return "client_error"
	case ErrorTypeStructuredOutputUnavailable:
		return "structured_output_unavailable"
	default:
		return "invalid"
	}
}

// Error represents a classified provider error with retry metadata.
type Error struct {
	Err        error     // Wrapped underlying error
	Message    string    // Human-readable error message
	Type       ErrorType // Classified error type
	StatusCode int       // HTTP status code if applicable
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("llm error (%s): %s", e.Type.String(), e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("llm error (%s): %v", e.Type.String(), e.Err)
	}
	return fmt.Sprintf("llm error (%s): status %d", e.Type.String(), e.StatusCode)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns whether this error type should be retried.
func (e *Error) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeServer, ErrorTypeTimeout, ErrorTypeUnreachable:
		return true
	default:
		return false
	}
}

// Is checks if an error is of a specific type.
func Is(err error, errorType ErrorType) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type == errorType
	}
	return false
}

// TypeOf returns the error type of an error, or ErrorTypeClient if not classified.
func TypeOf(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeClient
}

// IsRetryable reports whether err carries a retryable classification.
// Unclassified errors are treated as non-retryable.
func IsRetryable(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.IsRetryable()
	}
	return false
}

// NewError creates a new classified provider error.
func NewError(errorType ErrorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
	}
}

// NewErrorWithStatus creates a new classified provider error with HTTP status.
func NewErrorWithStatus(errorType ErrorType, statusCode int, message string) *Error {
	return &Error{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewErrorWithCause creates a new classified provider error wrapping another error.
func NewErrorWithCause(errorType ErrorType, cause error, message string) *Error {
	return &Error{
		Type:    errorType,
		Err:     cause,
		Message: message,
	}
}
