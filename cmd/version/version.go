package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/analytics-exporter/internal/version"
)

// VersionCmd displays version and build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build information",
	Long: "Display version and build information.\n\n" +
		"Shows the semantic version, git commit hash, build date, Go version " +
		"and platform of the current gaexport binary. This information is useful " +
		"for troubleshooting and verifying the installed version.",
	Example: `  # Display version information
  gaexport version`,
	PreRunE: validateVersion,
	RunE:    runVersion,
}

func validateVersion(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	fmt.Fprintln(cmd.OutOrStdout(), info.String())
	return nil
}
