package validation

import (
	"strings"
	"testing"

	"sticky-wall/internal/config"
)

func TestValidator_IsNonEmptyString(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Empty string", "", false},
		{"Whitespace only", "   ", false},
		{"Tab and newline", "\t\n", false},
		{"Valid string", "hello", true},
		{"String with leading/trailing spaces", "  hello  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsNonEmptyString(tt.input)
			if result != tt.expected {
				t.Errorf("IsNonEmptyString(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidator_IsWithinLength(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		limit    int
		expected bool
	}{
		{"Empty string", "", 5, true},
		{"Exactly limit", "hello", 5, true},
		{"Too long", "hello!", 5, false},
		{"Multibyte counted as characters", "żółw", 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validator.IsWithinLength(tt.input, tt.limit); got != tt.expected {
				t.Errorf("IsWithinLength(%q, %d) = %v, expected %v", tt.input, tt.limit, got, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidDate(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"2026-10-14", true},
		{"2028-02-29", true},
		{"2026-02-29", false},
		{"2026-13-01", false},
		{"2026-1-4", false},
		{"14/10/2026", false},
		{"2026-10-14T00:00:00Z", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := validator.IsValidDate(tt.input); got != tt.expected {
				t.Errorf("IsValidDate(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidEmail(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"ann@example.com", true},
		{"a.b+c@mail.example.org", true},
		{"ann@example", false},
		{"ann example@x.com", false},
		{"@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := validator.IsValidEmail(tt.input); got != tt.expected {
				t.Errorf("IsValidEmail(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClean(t *testing.T) {
	decomposed := "Cafe\u0301"
	composed := "Caf\u00e9"

	if got := Clean("  " + decomposed + "\t"); got != composed {
		t.Errorf("Clean() = %q, expected %q", got, composed)
	}
	if got := Clean("Work"); got != "Work" {
		t.Errorf("Clean() = %q, expected Work", got)
	}
}

func TestValidator_Limits(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		v := NewValidator()
		if v.TextMaxLength() != 255 {
			t.Errorf("TextMaxLength() = %d", v.TextMaxLength())
		}
		if v.CategoryLimit() != 10 {
			t.Errorf("CategoryLimit() = %d", v.CategoryLimit())
		}
	})

	t.Run("from config", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Tasks.TextMaxLength = 20
		cfg.Categories.Max = 3
		v := NewValidatorWithConfig(cfg)
		if v.TextMaxLength() != 20 {
			t.Errorf("TextMaxLength() = %d", v.TextMaxLength())
		}
		if v.CategoryLimit() != 3 {
			t.Errorf("CategoryLimit() = %d", v.CategoryLimit())
		}
		if v.IsWithinLength(strings.Repeat("x", 21), v.TextMaxLength()) {
			t.Error("21 characters should exceed the configured limit")
		}
	})
}
