// Package export drives paginated report exports into per-view CSV files.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/leefowlercu/analytics-exporter/internal/csvout"
	"github.com/leefowlercu/analytics-exporter/internal/metrics"
	"github.com/leefowlercu/analytics-exporter/internal/report"
	"github.com/leefowlercu/analytics-exporter/internal/retry"
)

// ErrAborted is returned when the user declines to continue past the
// retry cap.
var ErrAborted = errors.New("operation aborted by user")

// Status is the outcome of one job.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusIncomplete Status = "incomplete"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Result describes one finished job.
type Result struct {
	Job        report.Job
	Status     Status
	Path       string
	Rows       int
	Total      int
	Pages      int
	Failures   int
	QuotaWaits int
	Duration   time.Duration
	Err        error
}

// Exporter is the export orchestrator.
type Exporter struct {
	fetcher       report.Fetcher
	decider       Decider
	retryCfg      retry.Config
	sleep         retry.SleepFunc
	out           io.Writer
	logger        *slog.Logger
	outputDir     string
	pageSize      int
	stopOnFailure bool
	now           func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithOutput sets the console writer for progress and notices.
func WithOutput(w io.Writer) Option { return func(e *Exporter) { e.out = w } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(e *Exporter) { e.logger = l } }

// WithOutputDir sets the directory output files are written to.
func WithOutputDir(dir string) Option { return func(e *Exporter) { e.outputDir = dir } }

// WithPageSize sets the page size; non-positive values keep the default.
func WithPageSize(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithRetry sets the retry limits used for every job.
func WithRetry(cfg retry.Config) Option { return func(e *Exporter) { e.retryCfg = cfg } }

// WithSleep replaces the sleep used for quota cooldowns and retry delays.
func WithSleep(fn retry.SleepFunc) Option { return func(e *Exporter) { e.sleep = fn } }

// WithStopOnFailure makes Run stop at the first failed job.
func WithStopOnFailure(stop bool) Option { return func(e *Exporter) { e.stopOnFailure = stop } }

// New creates an exporter.
func New(fetcher report.Fetcher, decider Decider, opts ...Option) *Exporter {
	e := &Exporter{
		fetcher:   fetcher,
		decider:   decider,
		out:       io.Discard,
		logger:    slog.Default(),
		outputDir: ".",
		pageSize:  report.DefaultPageSize,
		sleep:     retry.Sleep,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.decider == nil {
		e.decider = Policy{}
	}
	return e
}

// Export runs one job to completion.
func (e *Exporter) Export(ctx context.Context, job report.Job) Result {
	start := e.now()
	path := filepath.Join(e.outputDir, job.FileName())
	res := Result{Job: job, Path: path}
	logger := e.logger.With("job", job.ID(), "path", path)

	finish := func(status Status, err error) Result {
		res.Status = status
		res.Err = err
		res.Duration = e.now().Sub(start)
		metrics.RecordJob(string(status), res.Duration)
		return res
	}

	proceed, err := e.preflight(ctx, path)
	if err != nil {
		return finish(StatusFailed, err)
	}
	if !proceed {
		fmt.Fprintln(e.out, "View skipped.")
		logger.Info("output exists; view skipped")
		return finish(StatusSkipped, nil)
	}

	state := &retry.State{}
	ctrl := retry.New(e.retryCfg,
		retry.WithSleep(e.sleep),
		retry.WithObserver(console{w: e.out}),
		retry.WithLogger(logger))
	writer := csvout.New(path, append(job.Dimensions(), job.Metrics()...))

	cursor := 0
	for {
		page, err := ctrl.Do(ctx, state, func(ctx context.Context) (*report.Page, error) {
			p, err := e.fetcher.Fetch(ctx, job, cursor, e.pageSize)
			if err != nil {
				metrics.RecordFailure(report.KindOf(err).String())
			}
			return p, err
		})
		res.Failures, res.QuotaWaits = state.Failures, state.QuotaWaits

		if errors.Is(err, retry.ErrExhausted) {
			return e.escalate(ctx, job, &res, err, finish)
		}
		if err != nil {
			return finish(StatusFailed, fmt.Errorf("failed to fetch %s at row %d; %w", job.ID(), cursor, err))
		}

		n, err := writer.WritePage(page)
		if err != nil {
			return finish(StatusFailed, err)
		}
		res.Pages++
		res.Rows += n
		res.Total = page.RowCount
		metrics.RecordPage(n)

		if page.NextPageToken != "" && len(page.Rows) > 0 && page.NextPageToken != strconv.Itoa(cursor+len(page.Rows)) {
			logger.Warn("backend continuation token disagrees with offset cursor",
				"cursor", cursor+len(page.Rows),
				"next_page_token", page.NextPageToken)
		}
		cursor += len(page.Rows)

		fmt.Fprintf(e.out, "Fetched %d/%d rows.\n", min(cursor, page.RowCount), page.RowCount)
		logger.Debug("page written", "rows", n, "cursor", cursor, "total", page.RowCount)

		if len(page.Rows) < e.pageSize || cursor >= page.RowCount {
			fmt.Fprintln(e.out, "All data fetched successfully.")
			logger.Info("export complete", "rows", res.Rows, "pages", res.Pages)
			return finish(StatusCompleted, nil)
		}
	}
}

// preflight applies the overwrite decision. It removes the existing file
// when overwriting so the append-only writer starts from empty.
func (e *Exporter) preflight(ctx context.Context, path string) (bool, error) {
	if e.outputDir != "" {
		if err := os.MkdirAll(e.outputDir, 0755); err != nil {
			return false, fmt.Errorf("failed to create output directory %s; %w", e.outputDir, err)
		}
	}

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s; %w", path, err)
	}

	ok, err := e.decider.ConfirmOverwrite(ctx, path)
	if err != nil {
		return false, fmt.Errorf("overwrite decision failed; %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("failed to remove %s; %w", path, err)
	}
	return true, nil
}

func (e *Exporter) escalate(ctx context.Context, job report.Job, res *Result, cause error, finish func(Status, error) Result) Result {
	ok, err := e.decider.ContinueAfterExhausted(ctx, job, cause)
	if err != nil {
		return finish(StatusFailed, fmt.Errorf("continue decision failed; %w", errors.Join(cause, err)))
	}
	if !ok {
		e.logger.Error("retry cap reached; export aborted", "job", job.ID(), "error", cause)
		return finish(StatusFailed, fmt.Errorf("%w; %w", ErrAborted, cause))
	}
	fmt.Fprintf(e.out, "Warning: data for %s is incomplete (%d rows written).\n", job.Label(), res.Rows)
	e.logger.Warn("retry cap reached; continuing with incomplete data", "job", job.ID(), "rows", res.Rows, "error", cause)
	return finish(StatusIncomplete, cause)
}

// console prints retry notices for the user.
type console struct {
	w io.Writer
}

func (c console) QuotaWait(cooldown time.Duration, err error) {
	fmt.Fprintf(c.w, "Quota error: request limit exceeded. Retrying in %s.\n", formatCooldown(cooldown))
}

func (c console) Retry(attempt int, err error) {
	fmt.Fprintf(c.w, "Error on attempt %d: %v\n", attempt, err)
}

func formatCooldown(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return strconv.Itoa(m) + " minutes"
	}
	return d.String()
}
