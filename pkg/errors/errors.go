// Package errors provides structured error types for tooltree.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the core, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The treemap builder reports one code per failure class:
//   - NEGATIVE_METRIC: the metric column holds a negative value
//   - INVALID_METRIC: an extra metric cannot be resolved to an aggregation
//   - MISSING_NAME: a kept node has a null grouping value
//   - MISSING_EXTRA_METRIC: a tooltip asks for an unaggregated column
//   - INVALID_COLOR_SPEC: a color configuration cannot be resolved
//
// The remaining codes cover input loading, output formats and unexpected
// internal failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNegativeMetric, "metric column %q contains negative values", metric)
//	if errors.Is(err, errors.ErrCodeNegativeMetric) {
//	    // reject the input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Treemap build errors
	ErrCodeNegativeMetric     Code = "NEGATIVE_METRIC"
	ErrCodeInvalidMetric      Code = "INVALID_METRIC"
	ErrCodeMissingName        Code = "MISSING_NAME"
	ErrCodeMissingExtraMetric Code = "MISSING_EXTRA_METRIC"
	ErrCodeInvalidColorSpec   Code = "INVALID_COLOR_SPEC"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
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

// IsClientError reports whether err was caused by the caller's input or
// configuration rather than by an internal failure.
func IsClientError(err error) bool {
	switch GetCode(err) {
	case ErrCodeNegativeMetric, ErrCodeInvalidMetric, ErrCodeMissingName,
		ErrCodeMissingExtraMetric, ErrCodeInvalidColorSpec, ErrCodeInvalidInput,
		ErrCodeInvalidFormat, ErrCodeInvalidPath:
		return true
	}
	return false
}
