// Package domainerrors defines coded errors shared across the audit service.
//
// Handlers and services use codes to discriminate failure classes without
// string matching: caller input problems (invalid_attributes) are handled
// differently from environment problems (missing_context) or infrastructure
// problems (sink_failure). Stores and sinks wrap their underlying errors so
// the original cause stays reachable through errors.Unwrap.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure.
type Code string

const (
	// CodeUnknownEvent means the event name has no definition in the catalog.
	CodeUnknownEvent Code = "unknown_event"
	// CodeInvalidAttributes covers missing required, undefined, or
	// constraint-violating attributes supplied by the caller.
	CodeInvalidAttributes Code = "invalid_attributes"
	// CodeMissingContext means required request-context keys were absent.
	CodeMissingContext Code = "missing_context"
	// CodeInvalidContext means request-context values violated constraints.
	CodeInvalidContext Code = "invalid_context"
	// CodeSinkFailure means emission failed after successful validation.
	CodeSinkFailure Code = "sink_failure"

	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability in handlers.
func Is(err error, code Code) bool { return HasCode(err, code) }
