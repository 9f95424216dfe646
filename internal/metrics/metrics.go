package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domain "github.com/oshokin/range-monitor/internal/domain/monitor"
)

// Message results used as the "result" label.
const (
	ResultAccepted     = "accepted"
	ResultMalformed    = "malformed"
	ResultUnknownTopic = "unknown_topic"
)

// Metrics holds every collector of the monitor. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	topicOutOfRange *prometheus.GaugeVec
	messagesTotal   *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
}

// New registers the collectors, plus the Go and process collectors, in a
// dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		topicOutOfRange: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "range_monitor_topic_out_of_range",
				Help: "1 when the topic is out of range, 0 when it is normal",
			},
			[]string{"topic"},
		),
		messagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "range_monitor_messages_total",
				Help: "Total number of received messages",
			},
			[]string{"result"}, // accepted, malformed, unknown_topic
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "range_monitor_transitions_total",
				Help: "Total number of status transitions",
			},
			[]string{"topic", "direction"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "range_monitor_notifications_total",
				Help: "Total number of notification attempts",
			},
			[]string{"outcome"}, // delivered, failed
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "range_monitor_http_requests_total",
				Help: "Total number of status API requests",
			},
			[]string{"method", "route", "status"},
		),
	}
}

// StatusChanged sets the out-of-range gauge of the topic.
func (m *Metrics) StatusChanged(topic string, status domain.Status) {
	if m == nil {
		return
	}

	var v float64
	if status == domain.StatusOutOfRange {
		v = 1
	}

	m.topicOutOfRange.WithLabelValues(topic).Set(v)
}

// MessageReceived counts a message by result.
func (m *Metrics) MessageReceived(result string) {
	if m == nil {
		return
	}

	m.messagesTotal.WithLabelValues(result).Inc()
}

// TransitionObserved counts a status transition.
func (m *Metrics) TransitionObserved(topic string, direction domain.Direction) {
	if m == nil {
		return
	}

	m.transitions.WithLabelValues(topic, direction.String()).Inc()
}

// NotificationSent counts a notification attempt by outcome.
func (m *Metrics) NotificationSent(err error) {
	if m == nil {
		return
	}

	outcome := "delivered"
	if err != nil {
		outcome = "failed"
	}

	m.notifications.WithLabelValues(outcome).Inc()
}

// HTTPRequestServed counts a status API request.
func (m *Metrics) HTTPRequestServed(method, route string, status int) {
	if m == nil {
		return
	}

	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
