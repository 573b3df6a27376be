// Package metrics provides Prometheus metrics for export runs.
//
// The exporter is a batch job, so metrics are not served over HTTP; they are
// written once per run in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "gaexport"
)

// Registry holds every exporter metric.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Page metrics.
var (
	// PagesTotal is the number of pages written.
	PagesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pages_total",
		Help:      "Total number of report pages written",
	})

	// RowsTotal is the number of data rows written.
	RowsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_total",
		Help:      "Total number of data rows written",
	})
)

// FetchFailuresTotal counts failed fetches by failure kind.
var FetchFailuresTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "fetch_failures_total",
	Help:      "Total number of failed page fetches",
}, []string{"kind"})

// Job metrics.
var (
	JobsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_total",
		Help:      "Total number of view exports by outcome",
	}, []string{"status"})

	JobDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Duration of view exports",
		Buckets:   []float64{1, 10, 60, 300, 900, 3600, 4 * 3600, 12 * 3600},
	}, []string{"status"})

	LastRunTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last export run finished",
	})
)

// RecordPage records one written page of rows.
func RecordPage(rows int) {
	PagesTotal.Inc()
	RowsTotal.Add(float64(rows))
}

// RecordFailure records a failed fetch of the given kind.
func RecordFailure(kind string) {
	FetchFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordJob records a finished job.
func RecordJob(status string, duration time.Duration) {
	JobsTotal.WithLabelValues(status).Inc()
	JobDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// WriteTextfile stamps the run time and writes all metrics to path.
func WriteTextfile(path string) error {
	LastRunTimestamp.SetToCurrentTime()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory; %w", err)
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s; %w", path, err)
	}
	return nil
}
