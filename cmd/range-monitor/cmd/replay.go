package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oshokin/range-monitor/internal/service/monitor"
)

// replayTopic is the configured topic whose range is replayed.
//
//nolint:gochecknoglobals // Cobra flags are package level by convention.
var replayTopic string

// replayCmd feeds readings through the evaluator offline.
//
//nolint:gochecknoglobals // Cobra commands are package level by convention.
var replayCmd = &cobra.Command{
	Use:   "replay --topic TOPIC [--] VALUE...",
	Short: "Replay readings for a configured topic and print the notifications.",
	Long: `Evaluates the given readings in order for a configured topic, starting from the
normal status, and prints every notification that would be sent. Useful for
tuning the hysteresis without a broker.

Negative readings look like flags, so put flags first and separate the
readings with "--".`,
	Example: "  range-monitor replay -t sensors/freezer -- -18.5 -25 -19",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseReadings(args)
		if err != nil {
			return err
		}

		return monitor.Replay(cmd.OutOrStdout(), options(), replayTopic, values)
	},
}

func parseReadings(args []string) ([]float64, error) {
	values := make([]float64, 0, len(args))

	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid reading %q: %w", arg, err)
		}

		values = append(values, v)
	}

	return values, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	replayCmd.Flags().StringVarP(&replayTopic, "topic", "t", "", "configured topic to replay")
	_ = replayCmd.MarkFlagRequired("topic")
}
