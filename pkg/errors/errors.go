// Package errors provides structured error types for sptree.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The engine reports four kinds of failure:
//   - INVALID_VERTEX_ID: an operation referenced an id outside [0, N)
//   - DEGENERATE_EDGE: a self-loop was requested
//   - MALFORMED_RECORD: a graph record line could not be parsed or is inconsistent
//   - TRIANGULATION_INVARIANT: the triangulation lost input points (not recoverable)
//
// The remaining codes cover the surrounding layers (configuration, storage, API).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidVertexID, "vertex %d out of range [0, %d)", v, n)
//	if errors.Is(err, errors.ErrCodeInvalidVertexID) {
//	    // Reject the request
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedRecord, origErr, "line %d", lineNo)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Engine errors
	ErrCodeInvalidVertexID        Code = "INVALID_VERTEX_ID"
	ErrCodeDegenerateEdge         Code = "DEGENERATE_EDGE"
	ErrCodeMalformedRecord        Code = "MALFORMED_RECORD"
	ErrCodeTriangulationInvariant Code = "TRIANGULATION_INVARIANT"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidName   Code = "INVALID_NAME"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

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

// IsRecoverable reports whether the caller may reject the offending input and
// carry on. Triangulation invariant violations and uncoded errors are not.
func IsRecoverable(err error) bool {
	switch GetCode(err) {
	case "", ErrCodeTriangulationInvariant, ErrCodeInternal:
		return false
	}
	return true
}

// VertexOutOfRange builds the standard INVALID_VERTEX_ID error.
func VertexOutOfRange(v, n int) *Error {
	return New(ErrCodeInvalidVertexID, "vertex %d out of range [0, %d)", v, n)
}
