package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/range-monitor/internal/config"
	"github.com/oshokin/range-monitor/internal/logger"
)

// Severity classifies a notification.
type Severity string

const (
	// SeverityAlert is used when a topic leaves its range.
	SeverityAlert Severity = "alert"
	// SeverityInfo is used when a topic returns to its range.
	SeverityInfo Severity = "info"
)

// Notifier delivers a single human-readable message.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string) error
}

// Fanout delivers every notification to all of its notifiers.
type Fanout struct {
	notifiers []Notifier
	timeout   time.Duration
}

// NewFanout builds a Fanout. A positive timeout bounds each delivery separately.
func NewFanout(timeout time.Duration, notifiers ...Notifier) *Fanout {
	return &Fanout{
		notifiers: notifiers,
		timeout:   timeout,
	}
}

// Notify delivers to every notifier, even after a failure, and joins the errors.
func (f *Fanout) Notify(ctx context.Context, severity Severity, message string) error {
	var errs []error

	for i, n := range f.notifiers {
		if err := f.deliver(ctx, n, severity, message); err != nil {
			errs = append(errs, fmt.Errorf("notifier #%d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

func (f *Fanout) deliver(ctx context.Context, n Notifier, severity Severity, message string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	return n.Notify(ctx, severity, message)
}

// Log writes notifications to the log.
// It is the fallback when no destination is configured.
type Log struct{}

// Notify logs the message at warning level for alerts and info level otherwise.
func (Log) Notify(ctx context.Context, severity Severity, message string) error {
	if severity == SeverityAlert {
		logger.WarnKV(ctx, message, "severity", severity)
	} else {
		logger.InfoKV(ctx, message, "severity", severity)
	}

	return nil
}

// FromConfig builds the notifier described by the configuration.
// Without Telegram credentials and webhooks it falls back to Log.
//
//nolint:ireturn // Callers only need the Notifier behaviour.
func FromConfig(ctx context.Context, cfg config.NotifierConfig, timeout time.Duration) (Notifier, error) {
	var notifiers []Notifier

	if cfg.Telegram.Enabled() {
		tg, err := NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}

		notifiers = append(notifiers, tg)
	} else {
		logger.Warn(ctx, "telegram notifier is not configured")
	}

	for _, w := range cfg.Webhooks {
		notifiers = append(notifiers, NewWebhook(w.URL))
	}

	if len(notifiers) == 0 {
		logger.Warn(ctx, "no notifier is configured, notifications will only be logged")

		notifiers = append(notifiers, Log{})
	}

	return NewFanout(timeout, notifiers...), nil
}
