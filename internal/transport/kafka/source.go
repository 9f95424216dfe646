package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/oshokin/range-monitor/internal/logger"
)

var (
	// errNoBrokers is returned when no broker address is configured.
	errNoBrokers = errors.New("at least one broker must be configured")
	// errNoTopics is returned when the source is created without topics.
	errNoTopics = errors.New("at least one topic must be consumed")
)

// Options configures the Kafka source.
type Options struct {
	Brokers []string
	GroupID string
	Topics  []string
}

// reader is the part of *kafka.Reader used by the source.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Source is a Kafka message source.
type Source struct {
	opts      Options
	newReader func() reader
}

// New validates the options and prepares a Source.
func New(opts Options) (*Source, error) {
	if len(opts.Brokers) == 0 {
		return nil, errNoBrokers
	}

	if len(opts.Topics) == 0 {
		return nil, errNoTopics
	}

	s := &Source{opts: opts}
	s.newReader = func() reader {
		//nolint:exhaustruct // Zero values are the library defaults.
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:     s.opts.Brokers,
			GroupID:     s.opts.GroupID,
			GroupTopics: s.opts.Topics,
		})
	}

	return s, nil
}

// Run consumes messages and feeds them to handle until ctx is canceled.
func (s *Source) Run(ctx context.Context, handle func(context.Context, string, []byte)) error {
	ctx = logger.WithName(ctx, "kafka")

	r := s.newReader()
	defer func() {
		if err := r.Close(); err != nil {
			logger.WarnKV(ctx, "Failed to close Kafka reader", "error", err)
		}
	}()

	logger.InfoKV(ctx, "Consuming Kafka topics", "brokers", s.opts.Brokers, "group_id", s.opts.GroupID, "topics", s.opts.Topics)

	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("fetch kafka message: %w", err)
		}

		handle(ctx, msg.Topic, msg.Value)

		if err := r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("commit kafka message: %w", err)
		}
	}
}
