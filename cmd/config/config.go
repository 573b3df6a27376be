// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/analytics-exporter/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect gaexport configuration",
	Long: "Inspect gaexport configuration.\n\n" +
		"The config command shows and validates the gaexport configuration. " +
		"Configuration is read from a YAML file located at " +
		"~/.config/gaexport/config.yaml by default, and every key can be " +
		"overridden with a GAEXPORT_ environment variable.",
}

func init() {
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
}
