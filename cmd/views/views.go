// Package views implements the views command for listing exportable views.
package views

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/analytics-exporter/internal/cmdutil"
	"github.com/leefowlercu/analytics-exporter/internal/config"
	"github.com/leefowlercu/analytics-exporter/internal/jobs"
	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// Flag variables for the views command.
var (
	viewsWrite string
)

// ViewsCmd lists every view visible to the configured credentials.
var ViewsCmd = &cobra.Command{
	Use:   "views",
	Short: "List the views available for export",
	Long: "List the views available for export.\n\n" +
		"Enumerates every account, web property and view visible to the configured " +
		"credentials, in the order an export would process them, along with the " +
		"CSV file each view is written to. Use --write to save the list as a jobs " +
		"file that can be edited and passed to 'gaexport export --jobs'.",
	Example: `  # List views
  gaexport views

  # Save the list as a jobs file
  gaexport views --write ~/.config/gaexport/jobs.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: validateViews,
	RunE:    runViews,
}

func init() {
	ViewsCmd.Flags().StringVarP(&viewsWrite, "write", "w", "", "Write the views to this jobs file")
}

func validateViews(cmd *cobra.Command, args []string) error {
	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runViews(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Get()
	if err != nil {
		return err
	}

	ctx, stop := cmdutil.SignalContext(cmd)
	defer stop()

	lister, err := cmdutil.Backend.Lister(ctx, cmdutil.SessionConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to management service; %w", err)
	}
	views, err := lister.ListViews(ctx)
	if err != nil {
		return err
	}

	if len(views) == 0 {
		fmt.Fprintln(out, "No views found.")
		return nil
	}

	printViews(out, views, cfg.Export.Template())

	if viewsWrite == "" {
		return nil
	}
	path, err := cmdutil.ResolvePath(viewsWrite)
	if err != nil {
		return err
	}
	if err := jobs.WriteFile(path, views); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nWrote %d views to %s\n", len(views), path)
	return nil
}

func printViews(out io.Writer, views []report.View, tpl report.Template) {
	fmt.Fprintf(out, "Views (%d):\n\n", len(views))
	fmt.Fprintf(out, "%-12s %-16s %s\n", "VIEW", "PROPERTY", "FILE")
	for _, job := range jobs.Build(views, tpl) {
		fmt.Fprintf(out, "%-12s %-16s %s\n", job.ViewID, job.PropertyID, job.FileName())
	}
}
