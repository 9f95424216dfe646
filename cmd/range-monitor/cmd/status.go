package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/range-monitor/internal/service/monitor"
)

// statusAddress overrides grpc.listen_address from the configuration.
//
//nolint:gochecknoglobals // Cobra flags are package level by convention.
var statusAddress string

// statusCmd queries the health service of a running monitor.
//
//nolint:gochecknoglobals // Cobra commands are package level by convention.
var statusCmd = &cobra.Command{
	Use:   "status [topic...]",
	Short: "Print the status of topics from a running monitor.",
	Long: `Queries the gRPC health service of a running monitor for the given topics, or
for every configured topic, and exits with a non-zero status when any of them
is out of range.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitor.PrintStatus(cmd.Context(), cmd.OutOrStdout(), options(), statusAddress, args)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	statusCmd.Flags().StringVarP(&statusAddress, "address", "a", "", "health server address (default from grpc.listen_address)")
}
