package validation

import "fmt"

// CategoryNameMaxLength bounds category labels
const CategoryNameMaxLength = 50

// CategoryValidator validates category names against the registry
type CategoryValidator struct {
	validator *Validator
}

// NewCategoryValidator creates a new category validator
func NewCategoryValidator(v *Validator) *CategoryValidator {
	if v == nil {
		v = NewValidator()
	}
	return &CategoryValidator{validator: v}
}

// Limit returns the maximum number of categories
func (cv *CategoryValidator) Limit() int {
	return cv.validator.CategoryLimit()
}

// ValidateNew checks that name can join existing and returns it cleaned.
// Uniqueness is case-sensitive.
func (cv *CategoryValidator) ValidateNew(name string, existing []string) (string, error) {
	ve := NewValidationError()
	cleaned := Clean(name)

	switch {
	case !cv.validator.IsNonEmptyString(cleaned):
		ve.AddError("category", ErrorTypeRequired, "Please enter a category name.", nil)
	case !cv.validator.IsWithinLength(cleaned, CategoryNameMaxLength):
		ve.AddInvalidLengthError("category", "Category name", cleaned, CategoryNameMaxLength)
	case contains(existing, cleaned):
		ve.AddError("category", ErrorTypeDuplicate, fmt.Sprintf("Category %q already exists.", cleaned), cleaned)
	case len(existing) >= cv.Limit():
		ve.AddError("category", ErrorTypeLimitExceeded, fmt.Sprintf("Maximum of %d categories allowed.", cv.Limit()), len(existing))
	}

	if err := ve.Err(); err != nil {
		return "", err
	}
	return cleaned, nil
}

// ValidateAssignment checks that a task category is empty or registered
func (cv *CategoryValidator) ValidateAssignment(category string, registered []string) error {
	if category == "" || contains(registered, category) {
		return nil
	}
	ve := NewValidationError()
	ve.AddInvalidValueError("category", category, fmt.Sprintf("Category %q does not exist", category))
	return ve.Err()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
