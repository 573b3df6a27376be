package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultLogLevel      = "info"
	DefaultLogFile       = "~/.config/gaexport/gaexport.log"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3

	DefaultApplicationName   = "gaexport"
	DefaultRequestsPerSecond = 5.0

	DefaultOutputDir     = "."
	DefaultPageSize      = 1000
	DefaultStartDate     = "2005-01-01"
	DefaultEndDate       = "today"
	DefaultMaxAttempts   = 100
	DefaultQuotaCooldown = 10 * time.Minute
	DefaultRetryDelay    = time.Duration(0)
	DefaultOverwrite     = "ask"
	DefaultOnExhausted   = "ask"
)

// DefaultDimensions is the dimension list requested for every view.
var DefaultDimensions = []string{
	"ga:date",
	"ga:sourceMedium",
	"ga:keyword",
	"ga:countryIsoCode",
	"ga:fullReferrer",
	"ga:city",
	"ga:userType",
	"ga:deviceCategory",
}

// DefaultMetrics is the metric list requested for every view.
var DefaultMetrics = []string{
	"ga:users",
	"ga:newUsers",
	"ga:pageviews",
	"ga:uniquePageviews",
	"ga:sessions",
	"ga:bounceRate",
	"ga:avgSessionDuration",
	"ga:goalCompletionsAll",
}

// setDefaults registers all default configuration values with v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("log_max_size_mb", DefaultLogMaxSizeMB)
	v.SetDefault("log_max_backups", DefaultLogMaxBackups)

	v.SetDefault("analytics.credentials_file", "")
	v.SetDefault("analytics.application_name", DefaultApplicationName)
	v.SetDefault("analytics.requests_per_second", DefaultRequestsPerSecond)

	v.SetDefault("export.jobs_file", "")
	v.SetDefault("export.output_dir", DefaultOutputDir)
	v.SetDefault("export.page_size", DefaultPageSize)
	v.SetDefault("export.start_date", DefaultStartDate)
	v.SetDefault("export.end_date", DefaultEndDate)
	v.SetDefault("export.dimensions", DefaultDimensions)
	v.SetDefault("export.metrics", DefaultMetrics)
	v.SetDefault("export.max_attempts", DefaultMaxAttempts)
	v.SetDefault("export.quota_cooldown", DefaultQuotaCooldown)
	v.SetDefault("export.retry_delay", DefaultRetryDelay)
	v.SetDefault("export.overwrite", DefaultOverwrite)
	v.SetDefault("export.on_exhausted", DefaultOnExhausted)
	v.SetDefault("export.stop_on_failure", false)

	v.SetDefault("metrics.textfile", "")
}

// NewDefaultConfig returns a Config populated with default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel:      DefaultLogLevel,
		LogFile:       DefaultLogFile,
		LogMaxSizeMB:  DefaultLogMaxSizeMB,
		LogMaxBackups: DefaultLogMaxBackups,
		Analytics: AnalyticsConfig{
			ApplicationName:   DefaultApplicationName,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Export: ExportConfig{
			OutputDir:     DefaultOutputDir,
			PageSize:      DefaultPageSize,
			StartDate:     DefaultStartDate,
			EndDate:       DefaultEndDate,
			Dimensions:    append([]string(nil), DefaultDimensions...),
			Metrics:       append([]string(nil), DefaultMetrics...),
			MaxAttempts:   DefaultMaxAttempts,
			QuotaCooldown: DefaultQuotaCooldown,
			RetryDelay:    DefaultRetryDelay,
			Overwrite:     DefaultOverwrite,
			OnExhausted:   DefaultOnExhausted,
		},
	}
}
