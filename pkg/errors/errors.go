// Package errors provides structured error types for SLAMBUC.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the library
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: caller-contract violations (malformed tree, bad parameters)
//   - NOT_FOUND_*: resource not found (stored runs, cache entries)
//   - INTERNAL_*: unexpected internal errors
//
// An infeasible partitioning instance is NOT an error: the engines report it
// through [partition.Result.Feasible]. Codes here are reserved for conditions
// the caller must fix.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidParams, "memory bound must be positive: %d", m)
//	if errors.Is(err, errors.ErrCodeInvalidParams) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidTree, origErr, "load %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Caller-contract violations
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidTree      Code = "INVALID_TREE"
	ErrCodeInvalidParams    Code = "INVALID_PARAMS"
	ErrCodeInvalidPartition Code = "INVALID_PARTITION"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeUnreachablePath  Code = "UNREACHABLE_PATH"
	ErrCodeUnknownAlgorithm Code = "UNKNOWN_ALGORITHM"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeRunNotFound  Code = "RUN_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Execution errors
	ErrCodeCancelled Code = "CANCELLED"
	ErrCodeTooLarge  Code = "TOO_LARGE"
	ErrCodeBackend   Code = "BACKEND_ERROR"

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

// IsContractViolation reports whether err signals a malformed request
// (bad tree, bad parameters, unreachable critical-path tail) as opposed to
// a backend or internal failure.
func IsContractViolation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidTree, ErrCodeInvalidParams,
		ErrCodeInvalidPartition, ErrCodeInvalidFormat, ErrCodeUnreachablePath,
		ErrCodeUnknownAlgorithm, ErrCodeTooLarge:
		return true
	}
	return false
}
