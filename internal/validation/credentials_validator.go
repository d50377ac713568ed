package validation

// Registration is the input of the sign-up form
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// FullName joins the first and last names
func (r Registration) FullName() string {
	return r.FirstName + " " + r.LastName
}

// CredentialsValidator validates sign-up, sign-in and password changes
type CredentialsValidator struct {
	validator *Validator
}

// NewCredentialsValidator creates a new credentials validator
func NewCredentialsValidator(v *Validator) *CredentialsValidator {
	if v == nil {
		v = NewValidator()
	}
	return &CredentialsValidator{validator: v}
}

// ValidateLogin requires both the user ID and the password
func (cv *CredentialsValidator) ValidateLogin(userID, password string) error {
	ve := NewValidationError()
	if !cv.validator.IsNonEmptyString(userID) {
		ve.AddRequiredError("userId", "User ID")
	}
	if !cv.validator.IsNonEmptyString(password) {
		ve.AddRequiredError("password", "Password")
	}
	return ve.Err()
}

// ValidateRegistration requires every field and a plausible email
func (cv *CredentialsValidator) ValidateRegistration(r Registration) (Registration, error) {
	ve := NewValidationError()
	out := Registration{
		FirstName: Clean(r.FirstName),
		LastName:  Clean(r.LastName),
		Email:     Clean(r.Email),
		Password:  r.Password,
	}

	if out.FirstName == "" {
		ve.AddRequiredError("firstName", "First name")
	}
	if out.LastName == "" {
		ve.AddRequiredError("lastName", "Last name")
	}
	if out.Email == "" {
		ve.AddRequiredError("email", "Email")
	} else if !cv.validator.IsValidEmail(out.Email) {
		ve.AddInvalidFormatError("email", "Email", out.Email, "name@example.com")
	}
	if !cv.validator.IsNonEmptyString(out.Password) {
		ve.AddRequiredError("password", "Password")
	}

	if err := ve.Err(); err != nil {
		return Registration{}, err
	}
	return out, nil
}

// ValidatePasswordChange requires every field and a matching confirmation
func (cv *CredentialsValidator) ValidatePasswordChange(userID, oldPassword, newPassword, confirm string) error {
	ve := NewValidationError()
	if !cv.validator.IsNonEmptyString(userID) {
		ve.AddRequiredError("userId", "User ID")
	}
	if !cv.validator.IsNonEmptyString(oldPassword) {
		ve.AddRequiredError("oldPassword", "Old password")
	}
	if !cv.validator.IsNonEmptyString(newPassword) {
		ve.AddRequiredError("newPassword", "New password")
	}
	if !cv.validator.IsNonEmptyString(confirm) {
		ve.AddRequiredError("confirmNewPassword", "Password confirmation")
	}
	if ve.HasErrors() {
		return ve.Err()
	}
	if newPassword != confirm {
		ve.AddError("confirmNewPassword", ErrorTypeMismatch, "The new password and its confirmation should match", nil)
	}
	return ve.Err()
}
