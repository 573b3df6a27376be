package config

import (
	"time"

	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel      string          `yaml:"log_level" mapstructure:"log_level"`
	LogFile       string          `yaml:"log_file" mapstructure:"log_file"`
	LogMaxSizeMB  int             `yaml:"log_max_size_mb" mapstructure:"log_max_size_mb"`
	LogMaxBackups int             `yaml:"log_max_backups" mapstructure:"log_max_backups"`
	Analytics     AnalyticsConfig `yaml:"analytics" mapstructure:"analytics"`
	Export        ExportConfig    `yaml:"export" mapstructure:"export"`
	Metrics       MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
}

// AnalyticsConfig holds the reporting backend session settings.
type AnalyticsConfig struct {
	CredentialsFile   string  `yaml:"credentials_file" mapstructure:"credentials_file"`
	ApplicationName   string  `yaml:"application_name" mapstructure:"application_name"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ExportConfig holds the export engine settings.
type ExportConfig struct {
	JobsFile      string        `yaml:"jobs_file" mapstructure:"jobs_file"`
	OutputDir     string        `yaml:"output_dir" mapstructure:"output_dir"`
	PageSize      int           `yaml:"page_size" mapstructure:"page_size"`
	StartDate     string        `yaml:"start_date" mapstructure:"start_date"`
	EndDate       string        `yaml:"end_date" mapstructure:"end_date"`
	Dimensions    []string      `yaml:"dimensions,flow" mapstructure:"dimensions"`
	Metrics       []string      `yaml:"metrics,flow" mapstructure:"metrics"`
	MaxAttempts   int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	QuotaCooldown time.Duration `yaml:"quota_cooldown" mapstructure:"quota_cooldown"`
	RetryDelay    time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
	Overwrite     string        `yaml:"overwrite" mapstructure:"overwrite"`
	OnExhausted   string        `yaml:"on_exhausted" mapstructure:"on_exhausted"`
	StopOnFailure bool          `yaml:"stop_on_failure" mapstructure:"stop_on_failure"`
}

// Template returns the request template applied to every view.
func (c *ExportConfig) Template() report.Template {
	return report.Template{
		DateRange:  report.DateRange{StartDate: c.StartDate, EndDate: c.EndDate},
		Dimensions: append([]string(nil), c.Dimensions...),
		Metrics:    append([]string(nil), c.Metrics...),
	}
}

// MetricsConfig holds run metrics output settings.
type MetricsConfig struct {
	// Textfile, when set, receives Prometheus metrics after each run.
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}
