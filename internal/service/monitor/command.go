package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/range-monitor/internal/api/grpc/health"
	"github.com/oshokin/range-monitor/internal/api/rest"
	"github.com/oshokin/range-monitor/internal/config"
	"github.com/oshokin/range-monitor/internal/logger"
	"github.com/oshokin/range-monitor/internal/metrics"
	"github.com/oshokin/range-monitor/internal/notifier"
	"github.com/oshokin/range-monitor/internal/transport/kafka"
	"github.com/oshokin/range-monitor/internal/transport/mqtt"
	"github.com/oshokin/range-monitor/internal/version"
)

// Source delivers inbound messages to handle until ctx is canceled.
type Source interface {
	Run(ctx context.Context, handle func(ctx context.Context, topic string, payload []byte)) error
}

// Options controls the range-monitor process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// EnvFile specifies an optional dotenv file with secrets.
	EnvFile string
	// LogLevel overrides log.level from the settings file.
	LogLevel string
	// Source replaces the message source built from the settings.
	Source Source
	// Notifier replaces the notifiers built from the settings.
	Notifier notifier.Notifier
}

// Run validates the configuration, starts the status servers and dispatches
// messages until ctx is canceled or the source stops.
func Run(ctx context.Context, opts *Options) error {
	// Every range is validated here, before anything is subscribed.
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	logCloser, err := configureLogger(settings, opts.LogLevel)
	if err != nil {
		return err
	}

	defer logCloser() //nolint:errcheck // Nothing to do when closing the log file fails.

	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "range-monitor")

	n := opts.Notifier
	if n == nil {
		n, err = notifier.FromConfig(ctx, settings.Notifier, settings.Timeout)
		if err != nil {
			return fmt.Errorf("create notifier: %w", err)
		}
	} else {
		n = notifier.NewFanout(settings.Timeout, n)
	}

	src := opts.Source
	if src == nil {
		src, err = newSource(settings)
		if err != nil {
			return fmt.Errorf("create %s source: %w", settings.Source, err)
		}
	}

	m := metrics.New()
	reporter := health.NewReporter()

	svc, err := newService(settings.RangeSpecs(), n, m, m, reporter)
	if err != nil {
		return err
	}

	// Stop the servers as soon as the source returns.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)

	if err := startServers(groupCtx, group, settings, svc, m, reporter); err != nil {
		cancel()
		_ = group.Wait() //nolint:errcheck // The listen error is the one worth reporting.

		return err
	}

	logger.InfoKV(ctx, "Range monitor started",
		"version", version.Short(),
		"source", settings.Source,
		"topics", len(settings.Topics),
	)

	group.Go(func() error {
		defer cancel()

		if err := src.Run(groupCtx, svc.HandleMessage); err != nil {
			return fmt.Errorf("run %s source: %w", settings.Source, err)
		}

		return nil
	})

	err = group.Wait()

	logger.Info(ctx, "Range monitor stopped")

	return err
}

func configureLogger(settings *config.Config, levelOverride string) (func() error, error) {
	level := settings.Log.Level
	if levelOverride != "" {
		level = levelOverride
	}

	closer, err := logger.Configure(logger.Options{
		Level: level,
		File: logger.FileOptions{
			Path:       settings.Log.File,
			MaxSizeMB:  settings.Log.MaxSizeMB,
			MaxBackups: settings.Log.MaxBackups,
			MaxAgeDays: settings.Log.MaxAgeDays,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("configure logger: %w", err)
	}

	return closer.Close, nil
}

// startServers binds the enabled listeners right away, so a busy port fails
// the start, and serves them in the group.
func startServers(
	ctx context.Context,
	group *errgroup.Group,
	settings *config.Config,
	svc *service,
	m *metrics.Metrics,
	reporter *health.Reporter,
) error {
	lc := net.ListenConfig{}

	if addr := settings.HTTP.ListenAddress; addr != "" {
		lis, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}

		router := rest.NewRouter(svc, m)

		group.Go(func() error {
			return rest.Serve(ctx, lis, router)
		})
	}

	if addr := settings.GRPC.ListenAddress; addr != "" {
		lis, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}

		group.Go(func() error {
			return health.Serve(ctx, lis, reporter)
		})
	}

	return nil
}

var errUnknownSource = errors.New("unknown source")

func newSource(settings *config.Config) (Source, error) {
	topics := make([]string, 0, len(settings.Topics))
	for _, t := range settings.Topics {
		topics = append(topics, t.Topic)
	}

	switch settings.Source {
	case config.SourceMQTT:
		src, err := mqtt.New(mqtt.Options{
			Broker:    settings.MQTT.Broker,
			Username:  settings.MQTT.Username,
			Password:  settings.MQTT.Password,
			ClientID:  settings.MQTT.ClientID,
			QoS:       settings.MQTT.QoS,
			KeepAlive: settings.MQTT.KeepAlive,
			Topics:    topics,
		})
		if err != nil {
			return nil, err //nolint:wrapcheck // Wrapped by the caller.
		}

		return src, nil
	case config.SourceKafka:
		src, err := kafka.New(kafka.Options{
			Brokers: settings.Kafka.Brokers,
			GroupID: settings.Kafka.GroupID,
			Topics:  topics,
		})
		if err != nil {
			return nil, err //nolint:wrapcheck // Wrapped by the caller.
		}

		return src, nil
	default:
		return nil, fmt.Errorf("%w %q", errUnknownSource, settings.Source)
	}
}
