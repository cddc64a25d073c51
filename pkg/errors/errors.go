// Package errors provides structured error types for skilltree.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and library entry points
//   - Machine-readable error codes for programmatic handling
//   - Per-category failure reporting without aborting a whole build
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or configuration validation failures
//   - EMPTY_CATEGORY, NO_ROOT_CANDIDATE: Category-level build failures (category skipped)
//   - GRID_EXHAUSTED: Layout could not place every node (partial result)
//   - ITERATION_LIMIT_REACHED: A repair loop hit its pass cap (warning only)
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptyCategory, "category %q has no items", name)
//	if errors.Is(err, errors.ErrCodeEmptyCategory) {
//	    // Skip the category
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Build errors, reported per category
	ErrCodeEmptyCategory   Code = "EMPTY_CATEGORY"
	ErrCodeNoRootCandidate Code = "NO_ROOT_CANDIDATE"
	ErrCodeGridExhausted   Code = "GRID_EXHAUSTED"
	ErrCodeIterationLimit  Code = "ITERATION_LIMIT_REACHED"

	// Backend errors
	ErrCodeStorage Code = "STORAGE_ERROR"

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

// GridExhaustedError reports the items a layout could not place.
// It is returned alongside a partial placement, never instead of one.
type GridExhaustedError struct {
	Category string
	Unplaced []string
}

// Error implements the error interface.
func (e *GridExhaustedError) Error() string {
	return fmt.Sprintf("%s: category %q: %d unplaced (%s)",
		ErrCodeGridExhausted, e.Category, len(e.Unplaced), strings.Join(e.Unplaced, ", "))
}

// Code returns the error code for this error type.
func (e *GridExhaustedError) Code() Code {
	return ErrCodeGridExhausted
}
