package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"sticky-wall/internal/config"
	"sticky-wall/internal/schedule"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a validator using default limits
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithConfig creates a validator using configured limits
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// Clean trims s and puts it in Unicode normalization form C so that visually
// identical names compare equal.
func Clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsWithinLength checks that s has at most max characters
func (v *Validator) IsWithinLength(s string, limit int) bool {
	return utf8.RuneCountInString(s) <= limit
}

// IsValidDate checks for a real calendar date written as YYYY-MM-DD
func (v *Validator) IsValidDate(s string) bool {
	t, err := schedule.ParseDate(s)
	return err == nil && schedule.FormatDate(t) == s
}

// IsValidEmail checks for a plausible email address
func (v *Validator) IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// TextMaxLength returns the configured task text limit or the default
func (v *Validator) TextMaxLength() int {
	if v.config != nil {
		return v.config.Tasks.TextMaxLength
	}
	return 255
}

// CategoryLimit returns the configured category maximum or the default
func (v *Validator) CategoryLimit() int {
	if v.config != nil {
		return v.config.Categories.Max
	}
	return 10
}

// ParseDate parses a validated calendar date
func (v *Validator) ParseDate(s string) (time.Time, error) {
	return schedule.ParseDate(s)
}
