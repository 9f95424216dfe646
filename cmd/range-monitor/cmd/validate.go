package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/range-monitor/internal/service/monitor"
)

// validateCmd checks the configuration without connecting anywhere.
//
//nolint:gochecknoglobals // Cobra commands are package level by convention.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and print the topic bounds.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return monitor.ValidateConfig(cmd.OutOrStdout(), options())
	},
}
