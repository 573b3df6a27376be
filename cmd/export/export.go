// Package export implements the export command that writes one CSV file per view.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/analytics-exporter/internal/cmdutil"
	"github.com/leefowlercu/analytics-exporter/internal/config"
	engine "github.com/leefowlercu/analytics-exporter/internal/export"
	"github.com/leefowlercu/analytics-exporter/internal/jobs"
	"github.com/leefowlercu/analytics-exporter/internal/metrics"
	"github.com/leefowlercu/analytics-exporter/internal/prompt"
	"github.com/leefowlercu/analytics-exporter/internal/report"
	"github.com/leefowlercu/analytics-exporter/internal/retry"
)

// Flag variables for the export command.
var (
	exportJobsFile      string
	exportOutputDir     string
	exportPageSize      int
	exportOverwrite     string
	exportOnExhausted   string
	exportStopOnFailure bool
)

// flagBindings maps config keys to the flags that override them.
var flagBindings = map[string]string{
	"export.jobs_file":       "jobs",
	"export.output_dir":      "output-dir",
	"export.page_size":       "page-size",
	"export.overwrite":       "overwrite",
	"export.on_exhausted":    "on-exhausted",
	"export.stop_on_failure": "stop-on-failure",
}

// ExportCmd exports report data for every selected view.
var ExportCmd = &cobra.Command{
	Use:   "export [view-id...]",
	Short: "Export report data for each view to CSV",
	Long: "Export report data for each view to CSV.\n\n" +
		"Views come from the jobs file when one is configured, otherwise every view " +
		"visible to the credentials is enumerated. Each view is fetched page by page " +
		"and appended to its own CSV file in the output directory. Quota errors wait " +
		"out a cooldown; other failures are retried up to the configured cap.\n\n" +
		"Pass view IDs (or property.view job IDs) to export only those views.",
	Example: `  # Export every visible view into ./exports
  gaexport export --output-dir ./exports

  # Export two views listed in a jobs file, replacing existing files
  gaexport export --jobs views.yaml --overwrite always 123456 654321

  # Unattended run that keeps partial data when the retry cap is hit
  gaexport export --overwrite always --on-exhausted continue`,
	PreRunE: validateExport,
	RunE:    runExport,
}

func init() {
	ExportCmd.Flags().StringVar(&exportJobsFile, "jobs", "", "YAML jobs file listing the views to export")
	ExportCmd.Flags().StringVarP(&exportOutputDir, "output-dir", "o", config.DefaultOutputDir, "Directory CSV files are written to")
	ExportCmd.Flags().IntVar(&exportPageSize, "page-size", config.DefaultPageSize, "Rows requested per page")
	ExportCmd.Flags().StringVar(&exportOverwrite, "overwrite", config.DefaultOverwrite, "Existing file policy (ask, always, never)")
	ExportCmd.Flags().StringVar(&exportOnExhausted, "on-exhausted", config.DefaultOnExhausted, "Retry cap policy (ask, continue, abort)")
	ExportCmd.Flags().BoolVar(&exportStopOnFailure, "stop-on-failure", false, "Stop the batch at the first failed view")
}

func validateExport(cmd *cobra.Command, args []string) error {
	if err := config.BindFlags(cmd.Flags(), flagBindings); err != nil {
		return err
	}

	if _, err := engine.ParseOverwritePolicy(config.GetString("export.overwrite")); err != nil {
		return err
	}
	if _, err := engine.ParseExhaustedPolicy(config.GetString("export.on_exhausted")); err != nil {
		return err
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	logger := slog.Default().With("component", "export")

	cfg, err := config.Get()
	if err != nil {
		return err
	}

	ctx, stop := cmdutil.SignalContext(cmd)
	defer stop()

	session := cmdutil.SessionConfig(cfg)

	selected, err := resolveJobs(ctx, cfg, args)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		fmt.Fprintln(out, "No views to export.")
		return nil
	}

	outputDir, err := cmdutil.ResolvePath(cfg.Export.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory; %w", err)
	}

	fetcher, err := cmdutil.Backend.Fetcher(ctx, session, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to reporting service; %w", err)
	}

	// Validated in PreRunE; parse errors are impossible here
	overwrite, _ := engine.ParseOverwritePolicy(cfg.Export.Overwrite)
	onExhausted, _ := engine.ParseExhaustedPolicy(cfg.Export.OnExhausted)
	policy := engine.Policy{
		Overwrite:   overwrite,
		OnExhausted: onExhausted,
		Interactive: prompt.New(cmd.InOrStdin(), out),
	}

	exporter := engine.New(fetcher, policy,
		engine.WithOutput(out),
		engine.WithLogger(logger),
		engine.WithOutputDir(outputDir),
		engine.WithPageSize(cfg.Export.PageSize),
		engine.WithRetry(retry.Config{
			MaxAttempts:   cfg.Export.MaxAttempts,
			QuotaCooldown: cfg.Export.QuotaCooldown,
			RetryDelay:    cfg.Export.RetryDelay,
		}),
		engine.WithStopOnFailure(cfg.Export.StopOnFailure),
	)

	summary := exporter.Run(ctx, selected)
	fmt.Fprintln(out)
	summary.Print(out)

	if path := config.ExpandPath(cfg.Metrics.Textfile); path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			logger.Warn("failed to write metrics textfile", "path", path, "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("export interrupted; %w", err)
	}
	if failed := len(summary.Failed()); failed > 0 {
		return fmt.Errorf("%d of %d views failed", failed, len(selected))
	}
	return nil
}

// resolveJobs returns the jobs to run: the jobs file when configured, otherwise
// every enumerated view, narrowed to ids when given.
func resolveJobs(ctx context.Context, cfg *config.Config, ids []string) ([]report.Job, error) {
	tpl := cfg.Export.Template()

	var all []report.Job
	if cfg.Export.JobsFile != "" {
		path, err := cmdutil.ResolvePath(cfg.Export.JobsFile)
		if err != nil {
			return nil, err
		}
		if all, err = jobs.LoadFile(path, tpl); err != nil {
			return nil, err
		}
	} else {
		lister, err := cmdutil.Backend.Lister(ctx, cmdutil.SessionConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to management service; %w", err)
		}
		views, err := lister.ListViews(ctx)
		if err != nil {
			return nil, err
		}
		all = jobs.Build(views, tpl)
	}

	return jobs.Filter(all, ids)
}
