package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// Decider supplies the decisions the engine cannot make on its own.
type Decider interface {
	// ConfirmOverwrite is asked when the job's output file already exists.
	// Declining skips the job.
	ConfirmOverwrite(ctx context.Context, path string) (bool, error)

	// ContinueAfterExhausted is asked when the retry cap is reached.
	// Continuing ends the job as incomplete; declining fails it.
	ContinueAfterExhausted(ctx context.Context, job report.Job, cause error) (bool, error)
}

// OverwritePolicy decides existing-file handling.
type OverwritePolicy string

const (
	OverwriteAsk    OverwritePolicy = "ask"
	OverwriteAlways OverwritePolicy = "always"
	OverwriteNever  OverwritePolicy = "never"
)

// ExhaustedPolicy decides what happens when the retry cap is reached.
type ExhaustedPolicy string

const (
	ExhaustedAsk      ExhaustedPolicy = "ask"
	ExhaustedContinue ExhaustedPolicy = "continue"
	ExhaustedAbort    ExhaustedPolicy = "abort"
)

// ParseOverwritePolicy parses a case-insensitive policy name.
func ParseOverwritePolicy(s string) (OverwritePolicy, error) {
	switch p := OverwritePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case OverwriteAsk, OverwriteAlways, OverwriteNever:
		return p, nil
	}
	return "", fmt.Errorf("invalid overwrite policy %q; must be one of: ask, always, never", s)
}

// ParseExhaustedPolicy parses a case-insensitive policy name.
func ParseExhaustedPolicy(s string) (ExhaustedPolicy, error) {
	switch p := ExhaustedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ExhaustedAsk, ExhaustedContinue, ExhaustedAbort:
		return p, nil
	}
	return "", fmt.Errorf("invalid retry exhaustion policy %q; must be one of: ask, continue, abort", s)
}

// Policy is a config-driven Decider. "ask" policies are delegated to
// Interactive; without one they resolve to the conservative answer (no).
type Policy struct {
	Overwrite   OverwritePolicy
	OnExhausted ExhaustedPolicy
	Interactive Decider
}

// ConfirmOverwrite implements Decider.
func (p Policy) ConfirmOverwrite(ctx context.Context, path string) (bool, error) {
	switch p.Overwrite {
	case OverwriteAlways:
		return true, nil
	case OverwriteNever:
		return false, nil
	}
	if p.Interactive == nil {
		return false, nil
	}
	return p.Interactive.ConfirmOverwrite(ctx, path)
}

// ContinueAfterExhausted implements Decider.
func (p Policy) ContinueAfterExhausted(ctx context.Context, job report.Job, cause error) (bool, error) {
	switch p.OnExhausted {
	case ExhaustedContinue:
		return true, nil
	case ExhaustedAbort:
		return false, nil
	}
	if p.Interactive == nil {
		return false, nil
	}
	return p.Interactive.ContinueAfterExhausted(ctx, job, cause)
}
