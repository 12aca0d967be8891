// Package apperrors defines the structured error kinds surfaced to callers of
// the recipe service.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for programmatic handling.
type Code string

const (
	// CodeValidation marks malformed or missing request fields.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeNotFound marks an unknown recipe id.
	CodeNotFound Code = "NOT_FOUND"
	// CodeNotConfigured marks a missing credential for an optional integration.
	CodeNotConfigured Code = "NOT_CONFIGURED"
	// CodeUpstream marks a failed call to an external service.
	CodeUpstream Code = "UPSTREAM_ERROR"
	// CodeRateLimited marks a rejected request due to rate limiting.
	CodeRateLimited Code = "RATE_LIMIT_EXCEEDED"
	// CodeInternal is everything else.
	CodeInternal Code = "INTERNAL"
)

// Error carries a code, a caller-facing message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error around cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WithDetails creates an Error with structured details for the response body.
func WithDetails(code Code, message string, details map[string]any) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus maps a code to its response status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNotConfigured:
		return http.StatusServiceUnavailable
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a caller may retry the same request later.
func Retryable(code Code) bool {
	switch code {
	case CodeNotConfigured, CodeUpstream, CodeRateLimited, CodeInternal:
		return true
	default:
		return false
	}
}
