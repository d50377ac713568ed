package validation

import "testing"

func TestCredentialsValidator_ValidateLogin(t *testing.T) {
	validator := NewCredentialsValidator(nil)

	tests := []struct {
		name        string
		userID      string
		password    string
		expectError bool
	}{
		{"Valid", "u-1", "secret", false},
		{"Missing user", " ", "secret", true},
		{"Missing password", "u-1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateLogin(tt.userID, tt.password)
			if (err != nil) != tt.expectError {
				t.Errorf("ValidateLogin() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}

func TestCredentialsValidator_ValidateRegistration(t *testing.T) {
	validator := NewCredentialsValidator(nil)

	got, err := validator.ValidateRegistration(Registration{
		FirstName: " Ann ",
		LastName:  "Lee",
		Email:     "ann@example.com ",
		Password:  " secret ",
	})
	if err != nil {
		t.Fatalf("ValidateRegistration() unexpected error: %v", err)
	}
	if got.FullName() != "Ann Lee" {
		t.Errorf("FullName() = %q", got.FullName())
	}
	if got.Email != "ann@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
	if got.Password != " secret " {
		t.Errorf("Password should be kept verbatim, got %q", got.Password)
	}

	_, err = validator.ValidateRegistration(Registration{Email: "not-an-email"})
	var ve *ValidationError
	if !asValidationError(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"firstName", "lastName", "email", "password"} {
		if len(ve.GetFieldErrors(field)) == 0 {
			t.Errorf("expected error for field %s", field)
		}
	}
}

func TestCredentialsValidator_ValidatePasswordChange(t *testing.T) {
	validator := NewCredentialsValidator(nil)

	tests := []struct {
		name      string
		userID    string
		old       string
		next      string
		confirm   string
		errorType ValidationErrorType
	}{
		{"Valid", "u-1", "old", "new", "new", ""},
		{"Missing fields", "", "", "new", "new", ErrorTypeRequired},
		{"Mismatch", "u-1", "old", "new", "newer", ErrorTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePasswordChange(tt.userID, tt.old, tt.next, tt.confirm)
			if tt.errorType == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !asValidationError(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Errors[0].Type != tt.errorType {
				t.Errorf("error type = %s, expected %s", ve.Errors[0].Type, tt.errorType)
			}
		})
	}
}
