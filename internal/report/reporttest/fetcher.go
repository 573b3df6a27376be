// Package reporttest provides a scripted report.Fetcher for tests.
package reporttest

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// Call records the arguments of one Fetch.
type Call struct {
	JobID    string
	Cursor   int
	PageSize int
}

// Step is one scripted Fetch outcome. Err takes precedence over Page.
type Step struct {
	Page *report.Page
	Err  error
}

// Fetcher replays Steps in order. Once the script is exhausted it serves
// pages from Total (if set) or fails.
type Fetcher struct {
	mu    sync.Mutex
	steps []Step
	calls []Call

	// Total, when positive, makes the fetcher synthesize pages of a report
	// with this many rows after the script runs out.
	Total int
	// Dimensions and Metrics name the synthesized columns.
	Dimensions []string
	Metrics    []string
}

// New returns a fetcher that replays steps.
func New(steps ...Step) *Fetcher {
	return &Fetcher{steps: steps}
}

// Synthetic returns a fetcher serving a report of total rows.
func Synthetic(total int) *Fetcher {
	return &Fetcher{
		Total:      total,
		Dimensions: []string{"ga:date", "ga:city"},
		Metrics:    []string{"ga:users"},
	}
}

// Fetch implements report.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, job report.Job, cursor, pageSize int) (*report.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{JobID: job.ID(), Cursor: cursor, PageSize: pageSize})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(f.steps) > 0 {
		s := f.steps[0]
		f.steps = f.steps[1:]
		if s.Err != nil {
			return nil, s.Err
		}
		return s.Page, nil
	}

	if f.Total > 0 || f.Dimensions != nil {
		return SyntheticPage(f.Dimensions, f.Metrics, f.Total, cursor, pageSize), nil
	}
	return nil, report.Fatal(fmt.Errorf("script exhausted at cursor %d", cursor))
}

// Calls returns the recorded calls.
func (f *Fetcher) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// SyntheticPage builds the page [cursor, cursor+pageSize) of a report with
// total rows. Every dimension of row i holds "d<i>" and every metric
// holds the single value "<i>". Headers are set on the page at cursor 0.
func SyntheticPage(dims, metrics []string, total, cursor, pageSize int) *report.Page {
	p := &report.Page{RowCount: total}
	if cursor == 0 {
		p.DimensionHeaders = append([]string(nil), dims...)
		p.MetricHeaders = append([]string(nil), metrics...)
	}
	end := min(cursor+pageSize, total)
	for i := cursor; i < end; i++ {
		row := report.Row{}
		for range dims {
			row.Dimensions = append(row.Dimensions, "d"+strconv.Itoa(i))
		}
		for range metrics {
			row.Metrics = append(row.Metrics, []string{strconv.Itoa(i)})
		}
		p.Rows = append(p.Rows, row)
	}
	if end < total {
		p.NextPageToken = strconv.Itoa(end)
	}
	return p
}
