// Package retry wraps page fetches with the job-lifetime failure cap and the
// quota cooldown.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// Defaults.
const (
	DefaultMaxAttempts   = 100
	DefaultQuotaCooldown = 10 * time.Minute
)

// ErrExhausted is returned once the failure cap is reached.
var ErrExhausted = errors.New("retry attempts exhausted")

// Phase is the controller state recorded on State.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseSuccess
	PhaseRateLimitedWait
	PhaseRetrying
	PhaseAborted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhaseSuccess:
		return "success"
	case PhaseRateLimitedWait:
		return "rate_limited_wait"
	case PhaseRetrying:
		return "retrying"
	case PhaseAborted:
		return "aborted"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is the retry bookkeeping of one job. It is owned by the caller and
// passed to every Do call of the job; it is never reset between pages.
type State struct {
	Phase      Phase
	Failures   int
	QuotaWaits int
	LastErr    error
}

// Config holds controller limits.
type Config struct {
	// MaxAttempts caps counted failures over a whole job.
	MaxAttempts int
	// QuotaCooldown is the suspension after a rate-limit signal.
	QuotaCooldown time.Duration
	// RetryDelay is slept between counted retries; zero retries immediately.
	RetryDelay time.Duration
}

// Observer is notified of waits and retries.
type Observer interface {
	QuotaWait(cooldown time.Duration, err error)
	Retry(attempt int, err error)
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Controller decides retry, wait or abort for each failed fetch.
type Controller struct {
	cfg      Config
	sleep    SleepFunc
	observer Observer
	logger   *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithSleep replaces the sleep function.
func WithSleep(fn SleepFunc) Option {
	return func(c *Controller) { c.sleep = fn }
}

// WithObserver sets the wait/retry observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a controller. Non-positive limits fall back to the defaults.
func New(cfg Config, opts ...Option) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.QuotaCooldown <= 0 {
		cfg.QuotaCooldown = DefaultQuotaCooldown
	}
	c := &Controller{
		cfg:    cfg,
		sleep:  Sleep,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective limits.
func (c *Controller) Config() Config { return c.cfg }

// Do runs fetch until it succeeds, the failure cap is reached or ctx ends.
// Rate-limited failures suspend for the cooldown and are not counted;
// any other failure is counted on st. On exhaustion the returned error
// wraps both ErrExhausted and the last failure.
func (c *Controller) Do(ctx context.Context, st *State, fetch func(context.Context) (*report.Page, error)) (*report.Page, error) {
	for {
		if st.Failures >= c.cfg.MaxAttempts {
			st.Phase = PhaseAborted
			return nil, c.exhausted(st)
		}

		st.Phase = PhaseFetching
		page, err := fetch(ctx)
		if err == nil {
			st.Phase = PhaseSuccess
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		st.LastErr = err

		if report.KindOf(err) == report.KindRateLimited {
			st.Phase = PhaseRateLimitedWait
			st.QuotaWaits++
			c.logger.Warn("backend quota exhausted; cooling down",
				"cooldown", c.cfg.QuotaCooldown.String(),
				"quota_waits", st.QuotaWaits,
				"error", err)
			if c.observer != nil {
				c.observer.QuotaWait(c.cfg.QuotaCooldown, err)
			}
			if err := c.sleep(ctx, c.cfg.QuotaCooldown); err != nil {
				return nil, err
			}
			continue
		}

		st.Failures++
		st.Phase = PhaseRetrying
		c.logger.Warn("fetch failed",
			"attempt", st.Failures,
			"max_attempts", c.cfg.MaxAttempts,
			"kind", report.KindOf(err).String(),
			"error", err)
		if c.observer != nil {
			c.observer.Retry(st.Failures, err)
		}
		if st.Failures >= c.cfg.MaxAttempts {
			st.Phase = PhaseAborted
			return nil, c.exhausted(st)
		}
		if c.cfg.RetryDelay > 0 {
			if err := c.sleep(ctx, c.cfg.RetryDelay); err != nil {
				return nil, err
			}
		}
	}
}

func (c *Controller) exhausted(st *State) error {
	if st.LastErr == nil {
		return fmt.Errorf("%w after %d attempts", ErrExhausted, st.Failures)
	}
	return fmt.Errorf("%w after %d attempts; %w", ErrExhausted, st.Failures, st.LastErr)
}

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
