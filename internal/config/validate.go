package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// validOverwritePolicies lists recognized overwrite policies.
var validOverwritePolicies = map[string]bool{
	"ask":    true,
	"always": true,
	"never":  true,
}

// validExhaustedPolicies lists recognized retry-exhaustion policies.
var validExhaustedPolicies = map[string]bool{
	"ask":      true,
	"continue": true,
	"abort":    true,
}

// validLogLevels lists recognized log levels.
var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// relativeDate matches the relative date forms accepted by the reporting backend.
var relativeDate = regexp.MustCompile(`^(today|yesterday|[0-9]+daysAgo)$`)

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if !validLogLevels[strings.ToLower(strings.TrimSpace(cfg.LogLevel))] {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.LogLevel),
		})
	}

	if cfg.LogMaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "log_max_size_mb",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.LogMaxSizeMB),
		})
	}

	if cfg.LogMaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "log_max_backups",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.LogMaxBackups),
		})
	}

	if cfg.Analytics.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "analytics.requests_per_second",
			Message: fmt.Sprintf("must not be negative, got %g", cfg.Analytics.RequestsPerSecond),
		})
	}

	// Validate export config
	if cfg.Export.OutputDir == "" {
		errs = append(errs, ValidationError{
			Field:   "export.output_dir",
			Message: "must not be empty",
		})
	}

	if cfg.Export.PageSize < 1 || cfg.Export.PageSize > 100000 {
		errs = append(errs, ValidationError{
			Field:   "export.page_size",
			Message: fmt.Sprintf("must be between 1 and 100000, got %d", cfg.Export.PageSize),
		})
	}

	if !validDate(cfg.Export.StartDate) {
		errs = append(errs, ValidationError{
			Field:   "export.start_date",
			Message: fmt.Sprintf("must be YYYY-MM-DD, today, yesterday or NdaysAgo; got %q", cfg.Export.StartDate),
		})
	}

	if !validDate(cfg.Export.EndDate) {
		errs = append(errs, ValidationError{
			Field:   "export.end_date",
			Message: fmt.Sprintf("must be YYYY-MM-DD, today, yesterday or NdaysAgo; got %q", cfg.Export.EndDate),
		})
	}

	if len(cfg.Export.Dimensions) == 0 {
		errs = append(errs, ValidationError{
			Field:   "export.dimensions",
			Message: "must not be empty",
		})
	}

	if len(cfg.Export.Metrics) == 0 {
		errs = append(errs, ValidationError{
			Field:   "export.metrics",
			Message: "must not be empty",
		})
	}

	if cfg.Export.MaxAttempts < 1 {
		errs = append(errs, ValidationError{
			Field:   "export.max_attempts",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Export.MaxAttempts),
		})
	}

	if cfg.Export.QuotaCooldown < 0 {
		errs = append(errs, ValidationError{
			Field:   "export.quota_cooldown",
			Message: fmt.Sprintf("must not be negative, got %s", cfg.Export.QuotaCooldown),
		})
	}

	if cfg.Export.RetryDelay < 0 {
		errs = append(errs, ValidationError{
			Field:   "export.retry_delay",
			Message: fmt.Sprintf("must not be negative, got %s", cfg.Export.RetryDelay),
		})
	}

	if !validOverwritePolicies[strings.ToLower(strings.TrimSpace(cfg.Export.Overwrite))] {
		errs = append(errs, ValidationError{
			Field:   "export.overwrite",
			Message: fmt.Sprintf("must be one of ask, always, never; got %q", cfg.Export.Overwrite),
		})
	}

	if !validExhaustedPolicies[strings.ToLower(strings.TrimSpace(cfg.Export.OnExhausted))] {
		errs = append(errs, ValidationError{
			Field:   "export.on_exhausted",
			Message: fmt.Sprintf("must be one of ask, continue, abort; got %q", cfg.Export.OnExhausted),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validDate(s string) bool {
	if relativeDate.MatchString(s) {
		return true
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
