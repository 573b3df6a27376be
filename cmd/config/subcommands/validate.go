package subcommands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/analytics-exporter/internal/config"
)

// ValidateCmd validates the current configuration.
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current configuration",
	Long: "Validate the current configuration.\n\n" +
		"Checks the effective configuration, including environment overrides, " +
		"and reports every setting with an invalid value. Returns exit code 0 if " +
		"valid, 1 if invalid.",
	Example: `  # Validate the configuration
  gaexport config validate`,
	Args:    cobra.NoArgs,
	PreRunE: validateValidate,
	RunE:    runValidate,
}

func validateValidate(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if _, err := config.Get(); err != nil {
		fmt.Fprintln(out, "Configuration validation failed:")
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				fmt.Fprintf(out, "  - %v\n", v)
			}
		} else {
			fmt.Fprintf(out, "  %v\n", err)
		}
		return errors.New("configuration is invalid")
	}

	if path := config.ConfigFilePath(); path != "" {
		fmt.Fprintf(out, "Configuration is valid: %s\n", path)
	} else {
		fmt.Fprintln(out, "No configuration file found; default configuration is valid.")
	}
	return nil
}
