// Package errors provides structured error types for hypercollate.
//
// Collation distinguishes three kinds of failure:
//   - INVARIANT_VIOLATION: the graph under construction broke a structural
//     rule (a markup node with two hyperedges, a missing lookup). The whole
//     collation run is aborted and nothing is retried.
//   - SEARCH_EXHAUSTED: the optimal match search hit its expansion cap or
//     deadline. The merge of that one witness failed; callers may retry with
//     a relaxed bound.
//   - INVALID_*: input that cannot be collated (bad sigils, malformed
//     witness graphs, unknown output formats).
//
// A witness sharing no text with earlier witnesses is not an error.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidWitness, "duplicate sigil %q", sigil)
//	if errors.Is(err, errors.ErrCodeInvalidWitness) {
//	    // Handle bad input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSearchExhausted, ctx.Err(), "witness %s", sigil)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidWitness Code = "INVALID_WITNESS"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Collation errors
	ErrCodeInvariant       Code = "INVARIANT_VIOLATION"
	ErrCodeSearchExhausted Code = "SEARCH_EXHAUSTED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Invariant reports a structural invariant violation.
// It is shorthand for New(ErrCodeInvariant, ...).
func Invariant(format string, args ...any) *Error {
	return New(ErrCodeInvariant, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsFatal reports whether err must abort a whole collation run.
// Invariant violations and internal errors are fatal; an exhausted search
// only fails the merge of one witness.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvariant, ErrCodeInternal:
		return true
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
