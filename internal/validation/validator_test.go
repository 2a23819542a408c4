package validation

import (
	"testing"

	"task-manager/internal/config"
)

func TestValidator_IsNonEmptyString(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"task", true},
		{"  task  ", true},
		{"", false},
		{"   ", false},
		{"\t\n", false},
	}

	for _, tt := range tests {
		if got := v.IsNonEmptyString(tt.input); got != tt.expected {
			t.Errorf("IsNonEmptyString(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestValidator_IsWithinLength(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		input    string
		max      int
		expected bool
	}{
		{"abc", 3, true},
		{"abcd", 3, false},
		{"", 0, true},
		{"日本語", 3, true},
		{"日本語!", 3, false},
	}

	for _, tt := range tests {
		if got := v.IsWithinLength(tt.input, tt.max); got != tt.expected {
			t.Errorf("IsWithinLength(%q, %d) = %v, want %v", tt.input, tt.max, got, tt.expected)
		}
	}
}

func TestValidator_HasNoControlCharacters(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name          string
		input         string
		allowNewlines bool
		expected      bool
	}{
		{"plain", "Buy milk", false, true},
		{"newline rejected", "a\nb", false, false},
		{"newline allowed", "a\nb", true, true},
		{"tab allowed", "a\tb", true, true},
		{"bell rejected", "a\ab", true, false},
		{"null rejected", "a\x00b", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.HasNoControlCharacters(tt.input, tt.allowNewlines); got != tt.expected {
				t.Errorf("HasNoControlCharacters(%q, %v) = %v, want %v", tt.input, tt.allowNewlines, got, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidTaskID(t *testing.T) {
	v := NewValidator()

	if !v.IsValidTaskID(1) {
		t.Error("expected 1 to be a valid ID")
	}
	if v.IsValidTaskID(0) {
		t.Error("expected 0 to be invalid")
	}
	if v.IsValidTaskID(-5) {
		t.Error("expected -5 to be invalid")
	}
}

func TestValidator_Limits(t *testing.T) {
	if got := NewValidator().titleMaxLength(); got != 200 {
		t.Errorf("default title limit = %d, want 200", got)
	}

	cfg := config.NewConfig()
	cfg.Validation.TitleMaxLength = 10
	cfg.Validation.DescriptionMaxLength = 20
	v := NewValidatorWithConfig(cfg)

	if got := v.titleMaxLength(); got != 10 {
		t.Errorf("title limit = %d, want 10", got)
	}
	if got := v.descriptionMaxLength(); got != 20 {
		t.Errorf("description limit = %d, want 20", got)
	}
}
