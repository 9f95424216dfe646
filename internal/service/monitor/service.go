package monitor

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	domain "github.com/oshokin/range-monitor/internal/domain/monitor"
	"github.com/oshokin/range-monitor/internal/logger"
	"github.com/oshokin/range-monitor/internal/metrics"
	"github.com/oshokin/range-monitor/internal/notifier"
	repository "github.com/oshokin/range-monitor/internal/repository/state"
)

// StatusObserver is told about the status of a topic once at startup and after
// every committed change. It is called with the topic lock held and must not block.
type StatusObserver interface {
	StatusChanged(topic string, status domain.Status)
}

// service dispatches readings of the monitored topics.
type service struct {
	// specs holds the range of every monitored topic, keyed by topic.
	specs map[string]domain.RangeSpec
	// store owns the latched status of every topic.
	store repository.Repository
	// notifier receives a message for every transition.
	notifier notifier.Notifier
	// metrics counts messages, transitions and notifications. May be nil.
	metrics *metrics.Metrics
	// observers mirror topic statuses, e.g. into gauges and health checks.
	observers []StatusObserver
}

// newService validates the ranges and initializes every topic as normal.
func newService(
	specs []domain.RangeSpec,
	n notifier.Notifier,
	m *metrics.Metrics,
	observers ...StatusObserver,
) (*service, error) {
	topics := make([]string, 0, len(specs))
	byTopic := make(map[string]domain.RangeSpec, len(specs))

	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("invalid range: %w", err)
		}

		topics = append(topics, spec.Topic)
		byTopic[spec.Topic] = spec
	}

	store, err := repository.NewMemoryRepository(topics)
	if err != nil {
		return nil, fmt.Errorf("initialise topic state: %w", err)
	}

	s := &service{
		specs:     byTopic,
		store:     store,
		notifier:  n,
		metrics:   m,
		observers: observers,
	}

	for _, e := range store.Snapshot() {
		s.publish(e.Topic, e.Status)
	}

	return s, nil
}

// HandleMessage processes one inbound message. Unknown topics and malformed
// payloads are discarded without touching the topic state.
func (s *service) HandleMessage(ctx context.Context, topic string, payload []byte) {
	spec, ok := s.specs[topic]
	if !ok {
		logger.WarnKV(ctx, "Message for unknown topic discarded", "topic", topic)
		s.metrics.MessageReceived(metrics.ResultUnknownTopic)

		return
	}

	value, ok := parseReading(payload)
	if !ok {
		logger.DebugKV(ctx, "Malformed payload discarded", "topic", topic, "payload", string(payload))
		s.metrics.MessageReceived(metrics.ResultMalformed)

		return
	}

	s.metrics.MessageReceived(metrics.ResultAccepted)

	var transition *domain.Transition

	s.store.Update(topic, func(current domain.Status) domain.Status {
		var next domain.Status

		next, transition = domain.Evaluate(value, spec, current)
		if transition != nil {
			s.publish(topic, next)
		}

		return next
	})

	if transition == nil {
		return
	}

	// The topic lock is released here, delivery may block.
	s.deliver(logger.WithKV(ctx, "topic", topic), transition)
}

func (s *service) deliver(ctx context.Context, t *domain.Transition) {
	logger.InfoKV(ctx, "Topic status changed",
		"direction", t.Direction.String(),
		"value", t.Value,
	)

	s.metrics.TransitionObserved(t.Topic, t.Direction)

	severity, message := RenderTransition(t)

	err := s.notifier.Notify(ctx, severity, message)
	s.metrics.NotificationSent(err)

	if err != nil {
		// The committed status stays, the notification is not retried.
		logger.ErrorKV(ctx, "Failed to deliver notification", "error", err)
	}
}

func (s *service) publish(topic string, status domain.Status) {
	for _, o := range s.observers {
		o.StatusChanged(topic, status)
	}
}

// ListTopics returns every monitored topic with its status, sorted by topic.
func (s *service) ListTopics() []domain.TopicStatus {
	entries := s.store.Snapshot()

	result := make([]domain.TopicStatus, 0, len(entries))
	for _, e := range entries {
		result = append(result, domain.TopicStatus{
			Spec:   s.specs[e.Topic],
			Status: e.Status,
		})
	}

	return result
}

// GetTopic returns a single monitored topic.
func (s *service) GetTopic(topic string) (domain.TopicStatus, bool) {
	spec, ok := s.specs[topic]
	if !ok {
		return domain.TopicStatus{}, false
	}

	return domain.TopicStatus{
		Spec:   spec,
		Status: s.store.GetOrInit(topic),
	}, true
}

// parseReading converts a payload into a finite reading.
func parseReading(payload []byte) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return value, true
}
