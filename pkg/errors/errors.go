// Package errors provides structured error types for bitter.
//
// Errors carry a machine-readable [Code] so callers can tell recoverable
// conditions (an unsupported surface role, a busy frame) from failures that
// should be reported, without matching on message text.
//
// # Error Codes
//
//   - UNSUPPORTED_ROLE: a surface that cannot be tiled; ignore it
//   - RENDER_TARGET: a render target could not be begun or committed; drop the frame
//   - FRAME_BUSY: a frame was requested while one is being rendered
//   - NOT_FOUND: an output or surface lookup failed
//   - INVALID_*: malformed scene files, configuration or API input
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnsupportedRole, "surface role %s", role)
//	if errors.Is(err, errors.ErrCodeUnsupportedRole) {
//	    // leave the surface untiled
//	}
//
//	err := errors.Wrap(errors.ErrCodeRenderTarget, cause, "commit %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Surface errors
	ErrCodeUnsupportedRole Code = "UNSUPPORTED_ROLE"

	// Render errors
	ErrCodeRenderTarget Code = "RENDER_TARGET"
	ErrCodeFrameBusy    Code = "FRAME_BUSY"

	// Lookup errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidScene  Code = "INVALID_SCENE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// Only the outermost *Error in the chain is consulted.
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
