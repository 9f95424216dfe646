package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"text/tabwriter"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/oshokin/range-monitor/internal/api/grpc/health"
	"github.com/oshokin/range-monitor/internal/config"
	domain "github.com/oshokin/range-monitor/internal/domain/monitor"
)

var (
	// ErrTopicNotConfigured is returned by Replay for a topic missing from the settings.
	ErrTopicNotConfigured = errors.New("topic is not configured")
	// ErrTopicsOutOfRange is returned by PrintStatus when a topic is not serving.
	ErrTopicsOutOfRange = errors.New("some topics are out of range")
	// errNoHealthAddress is returned when neither flag nor settings name the health server.
	errNoHealthAddress = errors.New("grpc.listen_address is not configured, pass --address")
)

// loadSettings reads the dotenv file and the validated settings.
func loadSettings(opts *Options) (*config.Config, error) {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return settings, nil
}

// ValidateConfig loads the settings and prints every topic with its trigger
// and recover bounds.
func ValidateConfig(w io.Writer, opts *Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(tw, "source: %s\n\n", settings.Source)
	_, _ = fmt.Fprintln(tw, "TOPIC\tRANGE\tHYSTERESIS\tTRIGGER AT\tRECOVER INSIDE")

	for _, spec := range settings.RangeSpecs() {
		_, _ = fmt.Fprintf(tw, "%s\t[%s, %s]\t%s\t<= %s or >= %s\t(%s, %s)\n",
			spec.Topic,
			domain.FormatValue(spec.Min),
			domain.FormatValue(spec.Max),
			domain.FormatValue(spec.Hysteresis),
			domain.FormatValue(spec.LowerTrigger()),
			domain.FormatValue(spec.UpperTrigger()),
			domain.FormatValue(spec.LowerRecover()),
			domain.FormatValue(spec.UpperRecover()),
		)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write topics: %w", err)
	}

	return nil
}

// Replay feeds values through the evaluator of a configured topic, starting
// from normal, and prints the notification of every transition.
func Replay(w io.Writer, opts *Options, topic string, values []float64) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	spec, ok := settings.FindTopic(topic)
	if !ok {
		return fmt.Errorf("%w: %q", ErrTopicNotConfigured, topic)
	}

	transitions, status := domain.Replay(spec, values)

	for i := range transitions {
		_, message := RenderTransition(&transitions[i])
		_, _ = fmt.Fprintln(w, message)
	}

	_, _ = fmt.Fprintf(w, "%d transition(s), final status: %s\n", len(transitions), status)

	return nil
}

// PrintStatus asks the health service of a running monitor for the status of
// the given topics, or of every configured topic, and prints it.
func PrintStatus(ctx context.Context, w io.Writer, opts *Options, address string, topics []string) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	if address == "" {
		address, err = dialAddress(settings.GRPC.ListenAddress)
		if err != nil {
			return err
		}
	}

	if len(topics) == 0 {
		for _, spec := range settings.RangeSpecs() {
			topics = append(topics, spec.Topic)
		}
	}

	client, err := health.Dial(address, health.WithCallTimeout(settings.Timeout))
	if err != nil {
		return err //nolint:wrapcheck // Already describes the failure.
	}

	defer client.Close() //nolint:errcheck // Nothing to do when closing fails.

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TOPIC\tSTATUS")

	var outOfRange int

	for _, topic := range topics {
		status, err := client.Check(ctx, topic)
		if err != nil {
			return err //nolint:wrapcheck // Already names the topic.
		}

		name := domain.StatusNormal.String()
		if status != healthpb.HealthCheckResponse_SERVING {
			name = domain.StatusOutOfRange.String()
			outOfRange++
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\n", topic, name)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write status: %w", err)
	}

	if outOfRange > 0 {
		return fmt.Errorf("%w: %d of %d", ErrTopicsOutOfRange, outOfRange, len(topics))
	}

	return nil
}

// dialAddress turns a listen address such as ":9101" into a dialable one.
func dialAddress(listenAddress string) (string, error) {
	if listenAddress == "" {
		return "", errNoHealthAddress
	}

	host, port, err := net.SplitHostPort(listenAddress)
	if err != nil {
		return "", fmt.Errorf("invalid grpc listen address %q: %w", listenAddress, err)
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port), nil
}
