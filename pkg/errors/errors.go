// Package errors provides structured error types for sdfexpand.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and library packages
//   - Machine-readable error codes for programmatic handling
//   - Distinguishing structural graph failures from rate failures
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or graph validation failures
//   - UNKNOWN_* / *_NOT_FOUND: Unresolved references
//   - INTERNAL_*: Unexpected internal errors
//
// The two fatal analysis failures carry distinct codes because their
// remediation differs: [ErrCodeStructural] means the graph must be connected
// or its rate constraints de-duplicated, [ErrCodeSign] means the rates admit
// no positive periodic schedule.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid rate: %d", rate)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStructural, sdf.ErrRankMismatch, "rank %d, want %d", r, n-1)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidRate   Code = "INVALID_RATE"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Graph analysis errors
	ErrCodeStructural Code = "INVALID_STRUCTURE"
	ErrCodeSign       Code = "UNBALANCEABLE_RATES"

	// Reference errors
	ErrCodeUnknownActor Code = "UNKNOWN_ACTOR"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
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

// Hint returns a short remediation hint for the error's code, or an empty
// string when the code has no specific advice.
func Hint(err error) string {
	switch GetCode(err) {
	case ErrCodeStructural:
		return "check that every actor is connected and no two channels impose contradictory rates"
	case ErrCodeSign:
		return "the production and consumption rates cannot be balanced with positive firing counts"
	case ErrCodeUnknownActor:
		return "declare every actor before referencing it from a channel"
	}
	return ""
}
