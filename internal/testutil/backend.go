package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/leefowlercu/analytics-exporter/internal/cmdutil"
	"github.com/leefowlercu/analytics-exporter/internal/gareport"
	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// FakeBackend serves a fixed view list and delegates report pages to Reports.
type FakeBackend struct {
	Views   []report.View
	ListErr error
	Reports report.Fetcher

	mu       sync.Mutex
	sessions []gareport.Config
}

// Fetcher implements cmdutil.BackendFactory.
func (b *FakeBackend) Fetcher(ctx context.Context, cfg gareport.Config, logger *slog.Logger) (report.Fetcher, error) {
	b.record(cfg)
	return b.Reports, nil
}

// Lister implements cmdutil.BackendFactory.
func (b *FakeBackend) Lister(ctx context.Context, cfg gareport.Config) (cmdutil.ViewLister, error) {
	b.record(cfg)
	return b, nil
}

// ListViews implements cmdutil.ViewLister.
func (b *FakeBackend) ListViews(ctx context.Context) ([]report.View, error) {
	if b.ListErr != nil {
		return nil, b.ListErr
	}
	return append([]report.View(nil), b.Views...), nil
}

// Sessions returns the session configs the backend was asked for.
func (b *FakeBackend) Sessions() []gareport.Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]gareport.Config(nil), b.sessions...)
}

func (b *FakeBackend) record(cfg gareport.Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = append(b.sessions, cfg)
}

// UseBackend installs b as the command backend for the duration of the test.
func UseBackend(t *testing.T, b cmdutil.BackendFactory) {
	t.Helper()
	prev := cmdutil.Backend
	cmdutil.Backend = b
	t.Cleanup(func() { cmdutil.Backend = prev })
}
