package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors in the client
type ErrorType string

const (
	// ErrorTypeRequestFailed indicates the request never produced a usable response
	// (connection error, timeout, malformed URL, non-success status)
	ErrorTypeRequestFailed ErrorType = "REQUEST_FAILED"

	// ErrorTypeDecodeFailed indicates the response body could not be parsed at all
	ErrorTypeDecodeFailed ErrorType = "DECODE_FAILED"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewRequestFailedError creates a new transport failure error
func NewRequestFailedError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeRequestFailed,
		Message: message,
		Err:     err,
	}
}

// NewStatusError creates a request failure for a non-success HTTP status
func NewStatusError(message string, statusCode int) *AppError {
	return &AppError{
		Type:       ErrorTypeRequestFailed,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewDecodeFailedError creates a new decode error
func NewDecodeFailedError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDecodeFailed,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether err, or any error it wraps, is an AppError of type t
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}
