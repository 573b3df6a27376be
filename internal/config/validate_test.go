package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig_ReturnsNil(t *testing.T) {
	cfg := NewDefaultConfig()
	err := Validate(&cfg)
	if err != nil {
		t.Errorf("Validate() error = %v, want nil for valid config", err)
	}
}

func TestValidate_InvalidPageSize_ReturnsError(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"zero", 0},
		{"negative", -1},
		{"too large", 100001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Export.PageSize = tt.size

			err := Validate(&cfg)
			if err == nil {
				t.Errorf("Validate() expected error for page_size %d", tt.size)
			}

			if !IsValidationError(err) {
				t.Errorf("expected validation error, got %T", err)
			}
		})
	}
}

func TestValidate_Dates(t *testing.T) {
	tests := []struct {
		date    string
		wantErr bool
	}{
		{"2005-01-01", false},
		{"today", false},
		{"yesterday", false},
		{"30daysAgo", false},
		{"2005-13-01", true},
		{"01/01/2005", true},
		{"", true},
		{"daysAgo", true},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Export.StartDate = tt.date

			err := Validate(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() with start_date %q error = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
		})
	}
}

func TestValidate_EmptyDimensions_ReturnsError(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Export.Dimensions = nil

	if err := Validate(&cfg); err == nil {
		t.Error("Validate() expected error for empty dimensions")
	}
}

func TestValidate_EmptyMetrics_ReturnsError(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Export.Metrics = []string{}

	if err := Validate(&cfg); err == nil {
		t.Error("Validate() expected error for empty metrics")
	}
}

func TestValidate_Policies(t *testing.T) {
	for _, p := range []string{"ask", "always", "never", " Always "} {
		cfg := NewDefaultConfig()
		cfg.Export.Overwrite = p
		if err := Validate(&cfg); err != nil {
			t.Errorf("Validate() overwrite %q error = %v, want nil", p, err)
		}
	}
	for _, p := range []string{"ask", "continue", "abort"} {
		cfg := NewDefaultConfig()
		cfg.Export.OnExhausted = p
		if err := Validate(&cfg); err != nil {
			t.Errorf("Validate() on_exhausted %q error = %v, want nil", p, err)
		}
	}

	cfg := NewDefaultConfig()
	cfg.Export.OnExhausted = "retry"
	if err := Validate(&cfg); err == nil {
		t.Error("Validate() expected error for unknown on_exhausted policy")
	}
}

func TestValidate_NegativeDurations_ReturnsError(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Export.QuotaCooldown = -1
	cfg.Export.RetryDelay = -1

	err := Validate(&cfg)
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 2 {
		t.Errorf("expected 2 validation errors, got %d", len(verrs))
	}
}

func TestValidate_MultipleErrors_ReturnsAllErrors(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.LogLevel = "loud"
	cfg.Export.OutputDir = ""
	cfg.Export.MaxAttempts = 0

	err := Validate(&cfg)
	if err == nil {
		t.Fatal("Validate() expected error for multiple invalid fields")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(verrs) < 3 {
		t.Errorf("expected at least 3 validation errors, got %d", len(verrs))
	}
}

func TestValidationError_Error_FormatsCorrectly(t *testing.T) {
	err := ValidationError{
		Field:   "export.page_size",
		Message: "must be between 1 and 100000",
	}

	want := "export.page_size: must be between 1 and 100000"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_Error_FormatsMultiple(t *testing.T) {
	errs := ValidationErrors{
		{Field: "field1", Message: "error1"},
		{Field: "field2", Message: "error2"},
	}

	got := errs.Error()
	if got == "" {
		t.Error("Error() returned empty string for multiple errors")
	}

	// Should contain both errors
	if !strings.Contains(got, "field1") || !strings.Contains(got, "error1") {
		t.Error("Error() missing first error")
	}
	if !strings.Contains(got, "field2") || !strings.Contains(got, "error2") {
		t.Error("Error() missing second error")
	}
}

func TestValidationErrors_Error_SingleError_ReturnsSimpleFormat(t *testing.T) {
	errs := ValidationErrors{
		{Field: "field1", Message: "error1"},
	}

	got := errs.Error()
	want := "field1: error1"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_Error_Empty_ReturnsEmptyString(t *testing.T) {
	errs := ValidationErrors{}

	if got := errs.Error(); got != "" {
		t.Errorf("Error() = %q, want empty string", got)
	}
}

func TestIsValidationError_WithValidationError_ReturnsTrue(t *testing.T) {
	err := ValidationError{Field: "test", Message: "error"}
	if !IsValidationError(err) {
		t.Error("IsValidationError() = false, want true for ValidationError")
	}
}

func TestIsValidationError_WithValidationErrors_ReturnsTrue(t *testing.T) {
	err := ValidationErrors{{Field: "test", Message: "error"}}
	if !IsValidationError(err) {
		t.Error("IsValidationError() = false, want true for ValidationErrors")
	}
}

func TestIsValidationError_WithOtherError_ReturnsFalse(t *testing.T) {
	err := &testError{}
	if IsValidationError(err) {
		t.Error("IsValidationError() = true, want false for other error types")
	}
}

// Helper types for tests
type testError struct{}

func (e *testError) Error() string { return "test error" }
