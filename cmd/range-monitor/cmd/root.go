package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/range-monitor/internal/config"
	"github.com/oshokin/range-monitor/internal/service/monitor"
	"github.com/oshokin/range-monitor/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// envFile is an optional dotenv file with secrets.
	envFile string
	// logLevel overrides the level from the configuration file.
	logLevel string

	// rootCmd represents the base command for running the monitor.
	rootCmd = &cobra.Command{
		Use:   "range-monitor",
		Short: "Watch topic readings and notify when they leave their range.",
		Long: `Subscribes to the configured topics and evaluates every numeric reading against
the topic range widened by its hysteresis.

A notification is sent when a topic goes out of range and once more when it
returns strictly inside the range narrowed by the hysteresis. Secrets may be
provided through MQTT_USERNAME, MQTT_PASSWORD, TELEGRAM_BOT_TOKEN and
TELEGRAM_CHAT_ID, directly or from a .env file.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return monitor.Run(ctx, options())
		},
	}
)

func options() *monitor.Options {
	return &monitor.Options{
		ConfigPath: configPath,
		EnvFile:    envFile,
		LogLevel:   logLevel,
	}
}

// Execute runs the range-monitor CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	// Errors are enough, the usage text would hide them.
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&envFile, "env-file", "e", "", "path to dotenv file with secrets (default .env when present)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(validateCmd, replayCmd, statusCmd)
}
