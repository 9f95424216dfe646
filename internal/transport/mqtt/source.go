package mqtt

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"

	"github.com/oshokin/range-monitor/internal/logger"
)

const (
	clientIDSuffixLength = 8
	subscribeTimeout     = 10 * time.Second
)

var (
	// errNoTopics is returned when the source is created without topics.
	errNoTopics = errors.New("at least one topic must be subscribed")
	// errInvalidBroker is returned when the broker URL has no scheme or host.
	errInvalidBroker = errors.New("broker URL must look like scheme://host:port")
)

// Options configures the MQTT source.
type Options struct {
	// Broker is the broker URL, e.g. tcp://localhost:1883.
	Broker string
	// Username and Password are sent only when both are set.
	Username string
	Password string
	// ClientID is the prefix of the client id, a random suffix is appended.
	ClientID string
	// QoS is the subscription QoS for every topic.
	QoS byte
	// KeepAlive is the MQTT keep-alive interval.
	KeepAlive time.Duration
	// Topics are subscribed on every (re)connect.
	Topics []string
}

// Source is an MQTT message source.
type Source struct {
	opts     Options
	broker   *url.URL
	clientID string
}

// New validates the options and prepares a Source.
func New(opts Options) (*Source, error) {
	if len(opts.Topics) == 0 {
		return nil, errNoTopics
	}

	broker, err := url.Parse(opts.Broker)
	if err != nil {
		return nil, fmt.Errorf("parse broker URL: %w", err)
	}

	if broker.Scheme == "" || broker.Host == "" {
		return nil, fmt.Errorf("%w: %q", errInvalidBroker, opts.Broker)
	}

	return &Source{
		opts:     opts,
		broker:   broker,
		clientID: clientID(opts.ClientID),
	}, nil
}

// ClientID returns the client id used for the broker session.
func (s *Source) ClientID() string {
	return s.clientID
}

// Run connects to the broker and feeds every received message to handle.
// It returns when ctx is canceled and the connection is closed.
func (s *Source) Run(ctx context.Context, handle func(context.Context, string, []byte)) error {
	ctx = logger.WithName(ctx, "mqtt")

	cm, err := autopaho.NewConnection(ctx, s.clientConfig(ctx, handle))
	if err != nil {
		return fmt.Errorf("start mqtt connection: %w", err)
	}

	logger.InfoKV(ctx, "Connecting to MQTT broker", "broker", s.broker.String(), "client_id", s.clientID)

	<-cm.Done()

	logger.Info(ctx, "MQTT connection closed")

	return nil
}

func (s *Source) clientConfig(ctx context.Context, handle func(context.Context, string, []byte)) autopaho.ClientConfig {
	//nolint:exhaustruct // Zero values are the library defaults.
	cfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{s.broker},
		KeepAlive:                     uint16(s.opts.KeepAlive / time.Second),
		CleanStartOnInitialConnection: true,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			logger.Info(ctx, "MQTT connection is up, subscribing")

			subCtx, cancel := context.WithTimeout(ctx, subscribeTimeout)
			defer cancel()

			if _, err := cm.Subscribe(subCtx, s.subscribePacket()); err != nil {
				logger.ErrorKV(ctx, "Failed to subscribe", "error", err)

				return
			}

			logger.InfoKV(ctx, "Subscribed to topics", "topics", s.opts.Topics)
		},
		OnConnectError: func(err error) {
			logger.WarnKV(ctx, "MQTT connection attempt failed", "error", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID: s.clientID,
			OnPublishReceived: []func(paho.PublishReceived) (bool, error){
				func(pr paho.PublishReceived) (bool, error) {
					handle(ctx, pr.Packet.Topic, pr.Packet.Payload)

					return true, nil
				},
			},
			OnClientError: func(err error) {
				logger.ErrorKV(ctx, "MQTT client error", "error", err)
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				logger.WarnKV(ctx, "MQTT server requested disconnect", "reason_code", d.ReasonCode)
			},
		},
	}

	if s.opts.Username != "" && s.opts.Password != "" {
		cfg.ConnectUsername = s.opts.Username
		cfg.ConnectPassword = []byte(s.opts.Password)
	}

	return cfg
}

func (s *Source) subscribePacket() *paho.Subscribe {
	subscriptions := make([]paho.SubscribeOptions, 0, len(s.opts.Topics))
	for _, topic := range s.opts.Topics {
		subscriptions = append(subscriptions, paho.SubscribeOptions{
			Topic: topic,
			QoS:   s.opts.QoS,
		})
	}

	return &paho.Subscribe{Subscriptions: subscriptions}
}

// clientID appends a random suffix so several monitors can share a broker.
func clientID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:clientIDSuffixLength]
}
