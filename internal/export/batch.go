package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// Summary aggregates the results of a batch.
type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Results  []Result
	// Stopped is set when the batch ended before every job ran.
	Stopped bool
}

// Count returns the number of results with status s.
func (s Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Failed returns the failed results.
func (s Summary) Failed() []Result {
	var failed []Result
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Rows returns the number of data rows written across all jobs.
func (s Summary) Rows() int {
	n := 0
	for _, r := range s.Results {
		n += r.Rows
	}
	return n
}

// Print writes the final summary to w.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Export finished: %d completed, %d incomplete, %d skipped, %d failed.\n",
		s.Count(StatusCompleted), s.Count(StatusIncomplete), s.Count(StatusSkipped), s.Count(StatusFailed))
	for _, r := range s.Failed() {
		fmt.Fprintf(w, "  %s: %v\n", r.Job.Label(), r.Err)
	}
	if s.Stopped {
		fmt.Fprintln(w, "Batch stopped before all views were exported.")
	}
}

// Run exports jobs sequentially. A failed job does not stop the batch
// unless stop-on-failure is set; cancellation of ctx always does.
func (e *Exporter) Run(ctx context.Context, jobs []report.Job) Summary {
	sum := Summary{
		RunID:   uuid.NewString(),
		Started: e.now(),
		Results: make([]Result, 0, len(jobs)),
	}
	logger := e.logger.With("run_id", sum.RunID)
	logger.Info("export batch started", "views", len(jobs))

	for i, job := range jobs {
		if ctx.Err() != nil {
			sum.Stopped = true
			break
		}

		fmt.Fprintf(e.out, "Retrieving data for view %d/%d: %s...\n", i+1, len(jobs), job.Label())
		res := e.Export(ctx, job)
		sum.Results = append(sum.Results, res)

		if res.Status == StatusFailed {
			fmt.Fprintf(e.out, "Error: %v\n", res.Err)
			logger.Error("view export failed", "job", job.ID(), "error", res.Err)
			if e.stopOnFailure && i < len(jobs)-1 {
				sum.Stopped = true
				break
			}
		}
	}

	sum.Finished = e.now()
	logger.Info("export batch finished",
		"completed", sum.Count(StatusCompleted),
		"incomplete", sum.Count(StatusIncomplete),
		"skipped", sum.Count(StatusSkipped),
		"failed", sum.Count(StatusFailed),
		"rows", sum.Rows(),
		"duration", sum.Finished.Sub(sum.Started).String())
	return sum
}
