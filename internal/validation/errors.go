package validation

import (
	stderrors "errors"
	"fmt"
	"strings"

	"sticky-wall/internal/errors"
)

// ValidationErrorType represents the type of validation error
type ValidationErrorType string

const (
	ErrorTypeRequired      ValidationErrorType = "required"
	ErrorTypeInvalidFormat ValidationErrorType = "invalid_format"
	ErrorTypeInvalidLength ValidationErrorType = "invalid_length"
	ErrorTypeInvalidValue  ValidationErrorType = "invalid_value"
	ErrorTypeDuplicate     ValidationErrorType = "duplicate"
	ErrorTypeLimitExceeded ValidationErrorType = "limit_exceeded"
	ErrorTypeMismatch      ValidationErrorType = "mismatch"
)

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string
	Type    ValidationErrorType
	Message string
	Value   interface{}
}

// Error implements the error interface for FieldError
func (fe *FieldError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", fe.Field, fe.Message)
}

// ValidationError collects the field errors of one input
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError creates an empty ValidationError
func NewValidationError() *ValidationError {
	return &ValidationError{Errors: make([]FieldError, 0)}
}

func (ve *ValidationError) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "validation error"
	case 1:
		return ve.Errors[0].Error()
	}
	messages := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(messages, "; "))
}

// IsValidationError checks if err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// HasErrors returns true if any field failed
func (ve *ValidationError) HasErrors() bool {
	return len(ve.Errors) > 0
}

// AddError appends a field error
func (ve *ValidationError) AddError(field string, errorType ValidationErrorType, message string, value interface{}) {
	ve.Errors = append(ve.Errors, FieldError{
		Field:   field,
		Type:    errorType,
		Message: message,
		Value:   value,
	})
}

// AddRequiredError adds a required field error
func (ve *ValidationError) AddRequiredError(field, label string) {
	ve.AddError(field, ErrorTypeRequired, fmt.Sprintf("%s is required", label), nil)
}

// AddInvalidFormatError adds an invalid format error
func (ve *ValidationError) AddInvalidFormatError(field, label string, value interface{}, expected string) {
	ve.AddError(field, ErrorTypeInvalidFormat, fmt.Sprintf("%s must look like %s", label, expected), value)
}

// AddInvalidLengthError adds an error for input longer than max characters
func (ve *ValidationError) AddInvalidLengthError(field, label string, value interface{}, limit int) {
	ve.AddError(field, ErrorTypeInvalidLength, fmt.Sprintf("%s must be at most %d characters long", label, limit), value)
}

// AddInvalidValueError adds an invalid value error with a complete message
func (ve *ValidationError) AddInvalidValueError(field string, value interface{}, message string) {
	ve.AddError(field, ErrorTypeInvalidValue, message, value)
}

// GetFieldErrors returns all errors for a specific field
func (ve *ValidationError) GetFieldErrors(field string) []FieldError {
	var fieldErrors []FieldError
	for _, err := range ve.Errors {
		if err.Field == field {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

// GetUserFriendlyMessage returns the message shown to the user
func (ve *ValidationError) GetUserFriendlyMessage() string {
	if len(ve.Errors) == 0 {
		return "Input validation failed"
	}
	if len(ve.Errors) == 1 {
		return ve.Errors[0].Message
	}
	lines := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		lines = append(lines, "- "+err.Message)
	}
	return "Please fix the following:\n" + strings.Join(lines, "\n")
}

// Err returns nil when there are no field errors, otherwise an AppError of
// type validation carrying the user message.
func (ve *ValidationError) Err() error {
	if !ve.HasErrors() {
		return nil
	}
	return errors.NewValidationError(ve.GetUserFriendlyMessage(), ve)
}
