package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		name      string
		errorType ErrorType
		expected  string
	}{
		{"Validation", ErrorTypeValidation, "validation"},
		{"NotFound", ErrorTypeNotFound, "not_found"},
		{"Storage", ErrorTypeStorage, "storage"},
		{"InvalidInput", ErrorTypeInvalidInput, "invalid_input"},
		{"Timeout", ErrorTypeTimeout, "timeout"},
		{"Remote", ErrorTypeRemote, "remote"},
		{"Auth", ErrorTypeAuth, "auth"},
		{"Conflict", ErrorTypeConflict, "conflict"},
		{"Unknown", ErrorType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.errorType.String(); got != tt.expected {
				t.Errorf("ErrorType.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name:     "Error without cause",
			appError: &AppError{Type: ErrorTypeValidation, Message: "text is required"},
			expected: "validation: text is required",
		},
		{
			name: "Error with cause",
			appError: &AppError{
				Type:    ErrorTypeStorage,
				Message: "write tasks",
				Cause:   errors.New("disk full"),
			},
			expected: "storage: write tasks (caused by: disk full)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appError.Error(); got != tt.expected {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewRemoteError("get record", 0, cause)

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should reach the cause through Unwrap")
	}
	var target *AppError
	if !errors.As(fmt.Errorf("push: %w", err), &target) || target.Type != ErrorTypeRemote {
		t.Errorf("errors.As should find the AppError through a wrap")
	}
}

func TestAppError_WithSubjectAndCause(t *testing.T) {
	cause := errors.New("deadline exceeded")
	appError := NewTimeoutError("get record", 0)

	result := appError.WithSubject("u1").WithCause(cause)
	if result != appError {
		t.Errorf("WithSubject and WithCause should return the same instance")
	}
	if appError.Subject != "u1" {
		t.Errorf("Subject = %q, want u1", appError.Subject)
	}
	if !errors.Is(appError, cause) {
		t.Errorf("WithCause should set the unwrapped cause")
	}
}

func TestErrorType_IsUserError(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		expected  bool
	}{
		{ErrorTypeValidation, true},
		{ErrorTypeNotFound, true},
		{ErrorTypeInvalidInput, true},
		{ErrorTypeAuth, true},
		{ErrorTypeConflict, true},
		{ErrorTypeStorage, false},
		{ErrorTypeTimeout, false},
		{ErrorTypeRemote, false},
	}

	for _, tt := range tests {
		t.Run(tt.errorType.String(), func(t *testing.T) {
			if got := tt.errorType.IsUserError(); got != tt.expected {
				t.Errorf("IsUserError() = %v, want %v", got, tt.expected)
			}
		})
	}
}
