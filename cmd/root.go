package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	configcmd "github.com/leefowlercu/analytics-exporter/cmd/config"
	exportcmd "github.com/leefowlercu/analytics-exporter/cmd/export"
	"github.com/leefowlercu/analytics-exporter/cmd/version"
	"github.com/leefowlercu/analytics-exporter/cmd/views"
	"github.com/leefowlercu/analytics-exporter/internal/config"
	"github.com/leefowlercu/analytics-exporter/internal/logging"
)

// logManager is the global logging manager, created in init() and upgraded after config loads
var logManager *logging.Manager

var gaexportCmd = &cobra.Command{
	Use:   "gaexport",
	Short: "Export Google Analytics report data to per-view CSV files",
	Long: "gaexport pulls paginated report data for every Google Analytics view you can access " +
		"and writes each view to its own CSV file.\n\n" +
		"Views are enumerated from the account tree or read from a jobs file. Pages are " +
		"appended as they arrive, quota errors wait out a cooldown, and other failures are " +
		"retried up to a per-view cap before asking whether to keep the partial data.\n\n",
	PersistentPreRunE: runInitialize,
}

func init() {
	logManager = logging.NewManager()
	slog.SetDefault(logManager.Logger())

	gaexportCmd.AddCommand(exportcmd.ExportCmd)
	gaexportCmd.AddCommand(views.ViewsCmd)
	gaexportCmd.AddCommand(configcmd.ConfigCmd)
	gaexportCmd.AddCommand(version.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	if err := config.Init(); err != nil {
		return err
	}

	levelStr := config.GetString("log_level")
	level, ok := logging.ParseLevel(levelStr)
	if !ok {
		level = logging.DefaultLevel
		if levelStr != "" {
			logger.Warn("invalid log level configured, using default", "configured", levelStr, "default", "info")
		}
	}

	logManager.SetRotation(config.GetInt("log_max_size_mb"), config.GetInt("log_max_backups"))
	if err := logManager.Upgrade(config.GetPath("log_file"), level); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
		// Don't return error - continue with bootstrap mode
		logManager.SetLevel(level)
	}

	return nil
}

func Execute() error {
	gaexportCmd.SilenceErrors = true
	gaexportCmd.SilenceUsage = true

	defer func() { _ = logManager.Close() }()

	err := gaexportCmd.Execute()

	if err != nil {
		cmd, _, _ := gaexportCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = gaexportCmd
		}

		fmt.Printf("Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Printf("\n")
			cmd.SetOut(os.Stdout)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}
