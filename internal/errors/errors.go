// Package errors provides the error taxonomy shared by engine packages.
//
// Recoverable simulation failures (unknown names, crafting shortfalls) are
// reported as structured results, not Go errors; this package classifies the
// remaining failures so that commands can decide between retrying and
// exiting. Invariant violations always indicate malformed content or an
// exhausted generator and are fatal.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified error.
	CodeUnknown Code = "UNKNOWN"

	// CodeUnknownReference marks lookups of regions, enemies, recipes,
	// sanctuaries, vessels, or slots that name nothing.
	CodeUnknownReference Code = "UNKNOWN_REFERENCE"

	// CodeInsufficientResources marks crafting shortfalls.
	CodeInsufficientResources Code = "INSUFFICIENT_RESOURCES"

	// CodeInvariantViolation marks fatal content or generation errors,
	// such as an exhausted name space or a malformed catalog.
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"
)

// Error is the domain error type carrying a code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}
