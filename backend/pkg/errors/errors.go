package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents a missing chat id or unknown route
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeInvalidRequest represents a request missing required fields
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	// ErrorTypeBackendUnavailable represents an inference backend failure
	ErrorTypeBackendUnavailable ErrorType = "backend_unavailable"
	// ErrorTypeCorruptState represents unreadable persisted state
	ErrorTypeCorruptState ErrorType = "corrupt_state"
	// ErrorTypeInternal represents anything else
	ErrorTypeInternal ErrorType = "internal"
)

// Error is the base error type carrying a category and an optional cause
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given category
func New(errType ErrorType, message string, err error) *Error {
	return &Error{Type: errType, Message: message, Err: err}
}

// NotFound creates a NotFound error
func NotFound(what string) *Error {
	return New(ErrorTypeNotFound, what+" not found", nil)
}

// InvalidRequest creates an InvalidRequest error
func InvalidRequest(reason string) *Error {
	return New(ErrorTypeInvalidRequest, reason, nil)
}

// BackendUnavailable creates a BackendUnavailable error
func BackendUnavailable(message string, err error) *Error {
	return New(ErrorTypeBackendUnavailable, message, err)
}

// CorruptState creates a CorruptState error
func CorruptState(path string, err error) *Error {
	return New(ErrorTypeCorruptState, "corrupt state at "+path, err)
}

// Internal creates an Internal error
func Internal(message string, err error) *Error {
	return New(ErrorTypeInternal, message, err)
}

// IsType checks whether err (or anything it wraps) carries the given category
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errType
	}
	return false
}
