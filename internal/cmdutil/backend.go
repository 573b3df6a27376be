package cmdutil

import (
	"context"
	"log/slog"

	"github.com/leefowlercu/analytics-exporter/internal/config"
	"github.com/leefowlercu/analytics-exporter/internal/gareport"
	"github.com/leefowlercu/analytics-exporter/internal/report"
	"github.com/leefowlercu/analytics-exporter/internal/version"
)

// ViewLister enumerates the views reachable by the session.
type ViewLister interface {
	ListViews(ctx context.Context) ([]report.View, error)
}

// BackendFactory constructs the reporting clients used by commands.
type BackendFactory interface {
	Fetcher(ctx context.Context, cfg gareport.Config, logger *slog.Logger) (report.Fetcher, error)
	Lister(ctx context.Context, cfg gareport.Config) (ViewLister, error)
}

// Backend is the factory commands use. Tests replace it with a fake.
var Backend BackendFactory = liveBackend{}

type liveBackend struct{}

func (liveBackend) Fetcher(ctx context.Context, cfg gareport.Config, logger *slog.Logger) (report.Fetcher, error) {
	return gareport.NewFetcher(ctx, cfg, logger)
}

func (liveBackend) Lister(ctx context.Context, cfg gareport.Config) (ViewLister, error) {
	return gareport.NewLister(ctx, cfg)
}

// SessionConfig derives the reporting session settings from cfg.
func SessionConfig(cfg *config.Config) gareport.Config {
	return gareport.Config{
		CredentialsFile:   config.ExpandPath(cfg.Analytics.CredentialsFile),
		ApplicationName:   version.UserAgent(cfg.Analytics.ApplicationName),
		RequestsPerSecond: cfg.Analytics.RequestsPerSecond,
	}
}
