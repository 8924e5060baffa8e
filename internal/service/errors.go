package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrForbidden indicates the authenticated user is not permitted to
	// perform the requested action on the resource.
	// API layer should map this to HTTP 403 Forbidden.
	ErrForbidden = errors.New("action not permitted")

	// ErrWrongCredentials indicates a login attempt with an unknown email
	// or a non-matching password. The two cases are deliberately
	// indistinguishable to the caller.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrWrongCredentials = errors.New("invalid email or password")

	// ErrEmptyPatch indicates an update request that carries no fields.
	// API layer should map this to HTTP 400 Bad Request.
	ErrEmptyPatch = errors.New("update contains no fields")

	// ErrResetTokenInvalid indicates a password reset token that is
	// unknown or has expired.
	// API layer should map this to HTTP 400 Bad Request.
	ErrResetTokenInvalid = errors.New("password reset token is invalid or expired")
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// AuthServiceError is a custom error type for authentication flow errors.
type AuthServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for AuthServiceError.
func (e *AuthServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("auth service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *AuthServiceError) Unwrap() error {
	return e.Err
}

// NewAuthServiceError creates a new AuthServiceError.
func NewAuthServiceError(operation, message string, err error) *AuthServiceError {
	return &AuthServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
