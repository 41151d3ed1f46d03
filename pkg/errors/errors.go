// Package errors provides structured error types for pedsim.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP query server
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The genealogy core distinguishes three failure kinds:
//   - PRECONDITION: an operand is not in a state the operation needs
//     (pedigree not assigned, haplotype not set, length mismatch, ...)
//   - INVARIANT: the input forest is malformed (no root, several roots,
//     a root-to-node path that cannot be found)
//   - INVALID_INPUT: construction-time rejections (duplicate pid, second
//     mother, cycles) and bad configuration
//
// NOT_FOUND and INTERNAL are used by host layers.
//
// # Usage
//
//	err := errors.Wrap(errors.ErrCodePrecondition, genealogy.ErrPedigreeNotSet, "source pid %d", pid)
//	if errors.Is(err, errors.ErrCodePrecondition) {
//	    // Handle precondition violation
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodePrecondition Code = "PRECONDITION"
	ErrCodeInvariant    Code = "INVARIANT"
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
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
		if e.Message == "" {
			return fmt.Sprintf("%s: %v", e.Code, e.Cause)
		}
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
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch {
		case e.Cause == nil:
			return e.Message
		case e.Message == "":
			return e.Cause.Error()
		default:
			return e.Message + ": " + e.Cause.Error()
		}
	}
	return err.Error()
}
