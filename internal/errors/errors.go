// Package errors provides the domain error taxonomy for cadence.
//
// Services return typed errors; callers branch with errors.Is:
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

const (
	CodeValidation         Code = "VALIDATION"
	CodeNotFound           Code = "NOT_FOUND"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
)

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error. Two *Errors match when
// their codes are equal, so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors for errors.Is checks.
var (
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnauthenticated    = &Error{Code: CodeUnauthenticated, Message: "not signed in"}
	ErrAlreadyExists      = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
)

// Validation creates a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWrap creates a validation error wrapping a cause.
func ValidationWrap(cause error, message string) *Error {
	return &Error{Code: CodeValidation, Message: message, cause: cause}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated creates an unauthenticated error.
func Unauthenticated(format string, args ...any) *Error {
	return &Error{Code: CodeUnauthenticated, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists creates an already-exists error.
func AlreadyExists(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// InvalidCredentials creates an invalid-credentials error.
func InvalidCredentials(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidCredentials, Message: fmt.Sprintf(format, args...)}
}
