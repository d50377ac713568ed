package errors

import (
	"errors"
	"fmt"
	"time"
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Subject: identifier,
	}
}

// NewStorageError creates a new local storage error
func NewStorageError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeStorage,
		Message: fmt.Sprintf("storage operation failed: %s", operation),
		Code:    "STORAGE_ERROR",
		Subject: operation,
		Cause:   cause,
	}
}

// NewInvalidInputError creates a new invalid input error. The subject records
// the field and the rejected value.
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInput,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Subject: fmt.Sprintf("%s=%v", field, value),
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout time.Duration) *AppError {
	message := fmt.Sprintf("operation timed out: %s", operation)
	if timeout > 0 {
		message = fmt.Sprintf("operation timed out after %s: %s", timeout, operation)
	}
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: message,
		Code:    "TIMEOUT",
		Subject: operation,
	}
}

// NewRemoteError creates a new error for a failed call to the remote record service.
// status is the HTTP status code, or 0 when no response was received.
func NewRemoteError(operation string, status int, cause error) *AppError {
	message := fmt.Sprintf("remote operation failed: %s", operation)
	if status != 0 {
		message = fmt.Sprintf("remote operation failed: %s (status %d)", operation, status)
	}
	return &AppError{
		Type:    ErrorTypeRemote,
		Message: message,
		Code:    "REMOTE_ERROR",
		Subject: operation,
		Status:  status,
		Cause:   cause,
	}
}

// NewAuthError creates a new authentication error
func NewAuthError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeAuth,
		Message: message,
		Code:    "AUTH_FAILED",
	}
}

// NewConflictError creates a new conflict error, used when a value already exists
func NewConflictError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, identifier),
		Code:    "CONFLICT",
		Subject: identifier,
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Type == errorType
	}
	return false
}

// IsNotFound is shorthand for IsErrorType(err, ErrorTypeNotFound)
func IsNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound)
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		if appErr.Type.IsUserError() {
			return appErr.Message
		}
		switch appErr.Type {
		case ErrorTypeStorage:
			return "Could not save your tasks locally. Please try again."
		case ErrorTypeTimeout:
			return "The operation timed out. Please try again."
		case ErrorTypeRemote:
			return "The sync server could not be reached. Your changes are kept locally."
		default:
			return "An unexpected error occurred. Please try again."
		}
	}
	return err.Error()
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return !appErr.Type.IsUserError()
	}
	return true
}
