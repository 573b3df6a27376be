package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leefowlercu/analytics-exporter/internal/report"
	"github.com/leefowlercu/analytics-exporter/internal/report/reporttest"
	"github.com/leefowlercu/analytics-exporter/internal/retry"
)

func testJob(id string) report.Job {
	return report.NewJob(report.View{
		PropertyID:   "UA-1-1",
		PropertyName: "Site",
		WebsiteURL:   "https://example.com",
		ViewID:       id,
		ViewName:     "View " + id,
	}, report.Template{
		DateRange:  report.DateRange{StartDate: "2020-01-01", EndDate: "2020-12-31"},
		Dimensions: []string{"ga:date", "ga:city"},
		Metrics:    []string{"ga:users"},
	})
}

// scriptedDecider answers with fixed values and records what it was asked.
type scriptedDecider struct {
	overwrite     bool
	cont          bool
	overwriteAsks []string
	continueAsks  int
}

func (d *scriptedDecider) ConfirmOverwrite(ctx context.Context, path string) (bool, error) {
	d.overwriteAsks = append(d.overwriteAsks, path)
	return d.overwrite, nil
}

func (d *scriptedDecider) ContinueAfterExhausted(ctx context.Context, job report.Job, cause error) (bool, error) {
	d.continueAsks++
	return d.cont, nil
}

type sleepRecorder struct{ slept []time.Duration }

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return nil
}

func newTestExporter(t *testing.T, f report.Fetcher, d Decider, opts ...Option) (*Exporter, *bytes.Buffer, *sleepRecorder, string) {
	t.Helper()
	dir := t.TempDir()
	out := &bytes.Buffer{}
	s := &sleepRecorder{}
	base := []Option{WithOutput(out), WithOutputDir(dir), WithSleep(s.sleep)}
	return New(f, d, append(base, opts...)...), out, s, dir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExport_PaginatesUntilRowCount(t *testing.T) {
	f := reporttest.Synthetic(2500)
	e, out, _, dir := newTestExporter(t, f, &scriptedDecider{})
	job := testJob("1")

	res := e.Export(context.Background(), job)

	require.NoError(t, res.Err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, 2500, res.Rows)
	assert.Equal(t, 2500, res.Total)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, filepath.Join(dir, job.FileName()), res.Path)

	calls := f.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, []int{0, 1000, 2000}, []int{calls[0].Cursor, calls[1].Cursor, calls[2].Cursor})
	for _, c := range calls {
		assert.Equal(t, report.DefaultPageSize, c.PageSize)
	}

	records := readCSV(t, res.Path)
	require.Len(t, records, 2501)
	assert.Equal(t, []string{"ga:date", "ga:city", "ga:users"}, records[0])
	assert.Equal(t, []string{"d0", "d0", "0"}, records[1])
	assert.Equal(t, []string{"d2499", "d2499", "2499"}, records[2500])

	assert.Contains(t, out.String(), "Fetched 1000/2500 rows.\nFetched 2000/2500 rows.\nFetched 2500/2500 rows.\n")
	assert.Contains(t, out.String(), "All data fetched successfully.")
}

func TestExport_FetchCountIsCeilOfRowCount(t *testing.T) {
	tests := []struct {
		total, pageSize, wantFetches int
	}{
		{1, 1000, 1},
		{999, 1000, 1},
		{1000, 1000, 1},
		{2000, 1000, 2},
		{2001, 1000, 3},
		{10, 3, 4},
		{9, 3, 3},
	}
	for _, tt := range tests {
		f := reporttest.Synthetic(tt.total)
		e, _, _, _ := newTestExporter(t, f, nil, WithPageSize(tt.pageSize))

		res := e.Export(context.Background(), testJob("1"))

		require.NoError(t, res.Err)
		assert.Equal(t, tt.total, res.Rows)
		assert.Len(t, f.Calls(), tt.wantFetches, "total=%d page=%d", tt.total, tt.pageSize)
	}
}

func TestExport_RateLimitedThenEmptyReport(t *testing.T) {
	f := reporttest.New(
		reporttest.Step{Err: report.RateLimited(errors.New("429 quota"))},
		reporttest.Step{Page: &report.Page{
			DimensionHeaders: []string{"ga:date", "ga:city"},
			MetricHeaders:    []string{"ga:users"},
			RowCount:         0,
		}},
	)
	e, out, sleeps, _ := newTestExporter(t, f, nil, WithRetry(retry.Config{QuotaCooldown: 10 * time.Minute}))

	res := e.Export(context.Background(), testJob("1"))

	require.NoError(t, res.Err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Zero(t, res.Failures)
	assert.Equal(t, 1, res.QuotaWaits)
	assert.Equal(t, []time.Duration{10 * time.Minute}, sleeps.slept)
	assert.Equal(t, [][]string{{"ga:date", "ga:city", "ga:users"}}, readCSV(t, res.Path))
	assert.Contains(t, out.String(), "Quota error: request limit exceeded. Retrying in 10 minutes.")
	assert.Contains(t, out.String(), "Fetched 0/0 rows.")
}

func TestExport_ExistingFileDeclined(t *testing.T) {
	f := reporttest.Synthetic(10)
	d := &scriptedDecider{overwrite: false}
	e, out, _, dir := newTestExporter(t, f, d)
	job := testJob("1")
	path := filepath.Join(dir, job.FileName())
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	res := e.Export(context.Background(), job)

	assert.Equal(t, StatusSkipped, res.Status)
	assert.NoError(t, res.Err)
	assert.Empty(t, f.Calls(), "no fetch may be issued for a skipped view")
	assert.Equal(t, []string{path}, d.overwriteAsks)
	assert.Contains(t, out.String(), "View skipped.")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(raw))
}

func TestExport_ExistingFileOverwritten(t *testing.T) {
	f := reporttest.Synthetic(2)
	e, _, _, dir := newTestExporter(t, f, &scriptedDecider{overwrite: true})
	job := testJob("1")
	path := filepath.Join(dir, job.FileName())
	require.NoError(t, os.WriteFile(path, []byte("stale,stale,stale\nold,old,old\n"), 0644))

	res := e.Export(context.Background(), job)

	require.NoError(t, res.Err)
	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, "ga:date", records[0][0])
	for _, rec := range records {
		assert.NotEqual(t, "old", rec[0])
		assert.NotEqual(t, "stale", rec[0])
	}
}

func TestExport_NoPromptWhenFileAbsent(t *testing.T) {
	d := &scriptedDecider{}
	e, _, _, _ := newTestExporter(t, reporttest.Synthetic(1), d)

	res := e.Export(context.Background(), testJob("1"))

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Empty(t, d.overwriteAsks)
}

func TestExport_RetriesTransientFailuresWithoutDuplicatingRows(t *testing.T) {
	boom := report.Transient(errors.New("backend error"))
	total := 5
	steps := []reporttest.Step{
		{Page: reporttest.SyntheticPage([]string{"ga:date"}, []string{"ga:users"}, total, 0, 2)},
		{Err: boom},
		{Err: boom},
		{Page: reporttest.SyntheticPage([]string{"ga:date"}, []string{"ga:users"}, total, 2, 2)},
		{Err: boom},
		{Page: reporttest.SyntheticPage([]string{"ga:date"}, []string{"ga:users"}, total, 4, 2)},
	}
	f := reporttest.New(steps...)
	e, out, _, _ := newTestExporter(t, f, nil, WithPageSize(2))

	res := e.Export(context.Background(), testJob("1"))

	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.Failures)
	assert.Equal(t, 5, res.Rows)

	records := readCSV(t, res.Path)
	require.Len(t, records, 6)
	for i, rec := range records[1:] {
		assert.Equal(t, []string{"d" + string(rune('0'+i)), string(rune('0' + i))}, rec)
	}
	assert.Contains(t, out.String(), "Error on attempt 1: backend error")
	assert.Contains(t, out.String(), "Error on attempt 3: backend error")

	cursors := []int{}
	for _, c := range f.Calls() {
		cursors = append(cursors, c.Cursor)
	}
	assert.Equal(t, []int{0, 2, 2, 2, 4, 4}, cursors)
}

func failingFetcher(n *int) report.Fetcher {
	return report.FetcherFunc(func(ctx context.Context, job report.Job, cursor, pageSize int) (*report.Page, error) {
		*n++
		return nil, report.Fatal(errors.New("400 bad request"))
	})
}

func TestExport_RetryCapContinue(t *testing.T) {
	calls := 0
	d := &scriptedDecider{cont: true}
	e, out, _, _ := newTestExporter(t, failingFetcher(&calls), d)

	res := e.Export(context.Background(), testJob("1"))

	assert.Equal(t, StatusIncomplete, res.Status)
	assert.ErrorIs(t, res.Err, retry.ErrExhausted)
	assert.Equal(t, retry.DefaultMaxAttempts, calls)
	assert.Equal(t, retry.DefaultMaxAttempts, res.Failures)
	assert.Equal(t, 1, d.continueAsks)
	assert.Contains(t, out.String(), "is incomplete")
}

func TestExport_RetryCapAbort(t *testing.T) {
	calls := 0
	d := &scriptedDecider{cont: false}
	e, _, _, _ := newTestExporter(t, failingFetcher(&calls), d, WithRetry(retry.Config{MaxAttempts: 4}))

	res := e.Export(context.Background(), testJob("1"))

	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, ErrAborted)
	assert.ErrorIs(t, res.Err, retry.ErrExhausted)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 1, d.continueAsks)
}

func TestExport_RetryCapSpansPages(t *testing.T) {
	boom := errors.New("flaky")
	dims, mets := []string{"ga:date"}, []string{"ga:users"}
	f := reporttest.New(
		reporttest.Step{Err: boom},
		reporttest.Step{Page: reporttest.SyntheticPage(dims, mets, 6, 0, 2)},
		reporttest.Step{Err: boom},
		reporttest.Step{Page: reporttest.SyntheticPage(dims, mets, 6, 2, 2)},
		reporttest.Step{Err: boom},
	)
	d := &scriptedDecider{cont: true}
	e, _, _, _ := newTestExporter(t, f, d, WithPageSize(2), WithRetry(retry.Config{MaxAttempts: 3}))

	res := e.Export(context.Background(), testJob("1"))

	assert.Equal(t, StatusIncomplete, res.Status)
	assert.Equal(t, 4, res.Rows)
	assert.Len(t, readCSV(t, res.Path), 5)
}

func TestExport_WriteFailureFailsJob(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	e := New(reporttest.Synthetic(3), nil, WithOutputDir(filepath.Join(blocker, "sub")))
	res := e.Export(context.Background(), testJob("1"))

	assert.Equal(t, StatusFailed, res.Status)
	assert.Error(t, res.Err)
}

func TestExport_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e, _, _, _ := newTestExporter(t, reporttest.Synthetic(3), nil)

	res := e.Export(ctx, testJob("1"))

	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestFormatCooldown(t *testing.T) {
	assert.Equal(t, "10 minutes", formatCooldown(10*time.Minute))
	assert.Equal(t, "1 minute", formatCooldown(time.Minute))
	assert.Equal(t, "1m30s", formatCooldown(90*time.Second))
}
