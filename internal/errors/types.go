package errors

import (
	"fmt"
)

// ErrorType is the category of an AppError
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeStorage
	ErrorTypeInvalidInput
	ErrorTypeTimeout
	ErrorTypeRemote
	ErrorTypeAuth
	ErrorTypeConflict
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeValidation:   "validation",
	ErrorTypeNotFound:     "not_found",
	ErrorTypeStorage:      "storage",
	ErrorTypeInvalidInput: "invalid_input",
	ErrorTypeTimeout:      "timeout",
	ErrorTypeRemote:       "remote",
	ErrorTypeAuth:         "auth",
	ErrorTypeConflict:     "conflict",
}

// String returns the lower-case name used in error text
func (et ErrorType) String() string {
	if name, ok := errorTypeNames[et]; ok {
		return name
	}
	return "unknown"
}

// IsUserError reports whether the type describes a problem with the caller's
// request rather than with storage or the network.
func (et ErrorType) IsUserError() bool {
	switch et {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput,
		ErrorTypeAuth, ErrorTypeConflict:
		return true
	}
	return false
}

// AppError is the error returned across package boundaries.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	// Subject names what failed: a field, a record ID or an operation.
	Subject string
	// Status is the HTTP status of a failed remote call, 0 when no response arrived.
	Status int
	Cause  error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithSubject sets Subject and returns e.
func (e *AppError) WithSubject(subject string) *AppError {
	e.Subject = subject
	return e
}

// WithCause sets Cause and returns e.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}
