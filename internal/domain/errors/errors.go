// Package errors provides domain-specific errors for the parley application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common domain error conditions.
var (
	ErrPromptNotFound        = errors.New("prompt not found")
	ErrPromptNameRequired    = errors.New("prompt name required")
	ErrPromptContentRequired = errors.New("prompt content required")
	ErrSystemPromptProtected = errors.New("system prompt cannot be deleted")
	ErrMissingCredential     = errors.New("provider credential not configured")
	ErrUnknownProvider       = errors.New("unknown provider identity")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeValidation    ErrorCode = "VALIDATION"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeProvider      ErrorCode = "PROVIDER"
	CodeConfiguration ErrorCode = "CONFIG"
)

// ParleyError wraps errors with additional context for debugging and handling.
type ParleyError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns a formatted error string including the code, message, and cause if present.
func (e *ParleyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for use with errors.Is and errors.As.
func (e *ParleyError) Unwrap() error {
	return e.Cause
}

// NewError creates a new ParleyError with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *ParleyError {
	return &ParleyError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ProviderError describes a failed exchange with a provider endpoint.
// StatusCode is zero for transport-level failures that never produced an
// HTTP response. Payload holds the raw error body when available.
type ProviderError struct {
	StatusCode int
	Payload    string
	Cause      error
}

// Error returns a formatted error string with the HTTP status when known.
func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Payload != "":
		return fmt.Sprintf("[%s] provider returned HTTP %d: %s", CodeProvider, e.StatusCode, e.Payload)
	case e.StatusCode > 0:
		return fmt.Sprintf("[%s] provider returned HTTP %d", CodeProvider, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("[%s] provider request failed: %v", CodeProvider, e.Cause)
	default:
		return fmt.Sprintf("[%s] provider request failed", CodeProvider)
	}
}

// Unwrap returns the underlying transport error, if any.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a ProviderError from an HTTP status and raw payload.
func NewProviderError(statusCode int, payload string) *ProviderError {
	return &ProviderError{StatusCode: statusCode, Payload: payload}
}

// NewTransportError creates a ProviderError for a failure below the HTTP layer.
func NewTransportError(cause error) *ProviderError {
	return &ProviderError{Cause: cause}
}

// CodeOf extracts the ErrorCode from an error chain.
// ProviderError values map to CodeProvider; errors that carry no domain
// error yield an empty code.
func CodeOf(err error) ErrorCode {
	var pe *ParleyError
	if errors.As(err, &pe) {
		return pe.Code
	}
	var prov *ProviderError
	if errors.As(err, &prov) {
		return CodeProvider
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return CodeOf(err) == CodeConfiguration }

// IsProvider reports whether err is a provider error.
func IsProvider(err error) bool { return CodeOf(err) == CodeProvider }

// Is reports whether err matches target using errors.Is semantics.
// This is a convenience wrapper around the standard library's errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target and sets target to that error value.
// This is a convenience wrapper around the standard library's errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
