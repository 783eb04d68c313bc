// Package errors provides structured error types for the cdhidef converter.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and serve mode
//   - Machine-readable error codes for programmatic handling
//   - Distinguishing "the clustering step produced nothing" from
//     "the clustering step produced malformed output"
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - MISSING_*, EMPTY_*: input availability failures
//   - MALFORMED_*, DANGLING_*, INVALID_*: input content failures
//   - CLUSTERING_*: external clustering subprocess failures
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedRow, "bad member token %q", tok)
//	if errors.Is(err, errors.ErrCodeMalformedRow) {
//	    // Handle parse error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMissingInput, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input availability errors
	ErrCodeMissingInput Code = "MISSING_INPUT"
	ErrCodeEmptyInput   Code = "EMPTY_INPUT"

	// Input content errors
	ErrCodeMalformedRow      Code = "MALFORMED_ROW"
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"
	ErrCodeInvalidInput      Code = "INVALID_INPUT"

	// Clustering subprocess errors
	ErrCodeClusteringFailed Code = "CLUSTERING_FAILED"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

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
