// Package gareport binds the export engine to Google Analytics: report pages
// come from the Analytics Reporting API v4 and views are enumerated with the
// Management API v3.
package gareport

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/analyticsreporting/v4"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// Config describes the authenticated session.
type Config struct {
	// CredentialsFile is a service account or authorized user JSON file.
	// Empty uses application default credentials.
	CredentialsFile string
	// ApplicationName is sent as the user agent.
	ApplicationName string
	// RequestsPerSecond paces report requests; 0 disables pacing.
	RequestsPerSecond float64
}

// ClientOptions returns the client options for cfg. extra options are
// appended and win over the derived ones.
func ClientOptions(cfg Config, extra ...option.ClientOption) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(analyticsreporting.AnalyticsReadonlyScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.ApplicationName != "" {
		opts = append(opts, option.WithUserAgent(cfg.ApplicationName))
	}
	return append(opts, extra...)
}

// quotaReasons are googleapi error reasons that signal quota exhaustion
// delivered with a 403 status.
var quotaReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
	"dailyLimitExceeded":    true,
}

// classify maps an API error onto the fetch failure taxonomy.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusTooManyRequests:
			return report.RateLimited(err)
		case gerr.Code == http.StatusForbidden && hasQuotaReason(gerr):
			return report.RateLimited(err)
		case gerr.Code == http.StatusRequestTimeout || gerr.Code >= 500:
			return report.Transient(err)
		case gerr.Code >= 400:
			return report.Fatal(err)
		}
	}
	// Network failures and anything unrecognized are retryable.
	return report.Transient(err)
}

func hasQuotaReason(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		if quotaReasons[item.Reason] {
			return true
		}
	}
	return strings.Contains(gerr.Message, "RESOURCE_EXHAUSTED")
}
