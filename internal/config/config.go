package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/range-monitor/internal/domain/monitor"
	"github.com/oshokin/range-monitor/internal/logger"
)

// Config is the root of the monitor settings file.
type Config struct {
	// Source selects the inbound message source: mqtt or kafka.
	Source string `yaml:"source"`
	// MQTT holds broker connection parameters for the mqtt source.
	MQTT MQTTConfig `yaml:"mqtt"`
	// Kafka holds consumer parameters for the kafka source.
	Kafka KafkaConfig `yaml:"kafka"`
	// Topics lists the monitored topics and their acceptable ranges.
	Topics []TopicConfig `yaml:"topics"`
	// Notifier configures the alert destinations.
	Notifier NotifierConfig `yaml:"notifier"`
	// Log configures verbosity and the optional rotating log file.
	Log LogConfig `yaml:"log"`
	// HTTP configures the status API. Empty address disables it.
	HTTP ListenConfig `yaml:"http"`
	// GRPC configures the health service. Empty address disables it.
	GRPC ListenConfig `yaml:"grpc"`
	// Timeout bounds every notification delivery.
	Timeout time.Duration `yaml:"timeout"`
}

// MQTTConfig describes the broker connection.
type MQTTConfig struct {
	Broker    string        `yaml:"broker"`
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	ClientID  string        `yaml:"client_id"`
	QoS       byte          `yaml:"qos"`
	KeepAlive time.Duration `yaml:"keep_alive"`
}

// KafkaConfig describes the consumer group.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

// TopicConfig is one monitored topic.
// Every key is required, so the numeric fields are pointers to tell a missing
// key apart from an explicit zero.
type TopicConfig struct {
	Topic      string   `yaml:"topic"`
	MinValue   *float64 `yaml:"min_value"`
	MaxValue   *float64 `yaml:"max_value"`
	Hysteresis *float64 `yaml:"hysteresis"`
}

// NotifierConfig lists the alert destinations.
type NotifierConfig struct {
	Telegram TelegramConfig  `yaml:"telegram"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// TelegramConfig holds the bot credentials.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// Enabled reports whether both credentials are present.
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// WebhookConfig is a single webhook endpoint.
type WebhookConfig struct {
	URL string `yaml:"url"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// ListenConfig is a listener address.
type ListenConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

const (
	// DefaultConfigFilename is the default filename for monitor settings.
	DefaultConfigFilename = "range-monitor.yaml"

	// SourceMQTT selects the MQTT broker as the message source.
	SourceMQTT = "mqtt"
	// SourceKafka selects a Kafka consumer group as the message source.
	SourceKafka = "kafka"

	// DefaultClientID is the MQTT client id prefix.
	DefaultClientID = "range-monitor"
	// DefaultGroupID is the Kafka consumer group.
	DefaultGroupID = "range-monitor"
	// DefaultQoS is the MQTT subscription QoS.
	DefaultQoS = 1
	// DefaultKeepAlive is the MQTT keep-alive interval.
	DefaultKeepAlive = 30 * time.Second
	// DefaultTimeout is the default duration for notification delivery.
	DefaultTimeout = 10 * time.Second
	// DefaultLogLevel is used when log.level is empty.
	DefaultLogLevel = "info"
	// DefaultLogMaxSizeMB is the rotation size of the log file.
	DefaultLogMaxSizeMB = 50

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	maxQoS = 2
	// maxKeepAlive is the largest interval the MQTT CONNECT packet can carry.
	maxKeepAlive = math.MaxUint16 * time.Second
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNoTopics is returned when the topic list is empty.
	errNoTopics = errors.New("at least one topic must be configured")
	// errMissingKey is returned when a topic entry lacks a required key.
	errMissingKey = errors.New("missing required key")
	// errDuplicateTopic is returned when a topic is listed twice.
	errDuplicateTopic = errors.New("topic is configured more than once")
	// errUnknownSource is returned for an unsupported source value.
	errUnknownSource = errors.New("source must be mqtt or kafka")
	// errBrokerRequired is returned when the mqtt source lacks a broker URL.
	errBrokerRequired = errors.New("mqtt.broker must be provided")
	// errInvalidQoS is returned when the subscription QoS is out of range.
	errInvalidQoS = errors.New("mqtt.qos must be 0, 1 or 2")
	// errInvalidKeepAlive is returned when the keep-alive does not fit the MQTT field.
	errInvalidKeepAlive = errors.New("mqtt.keep_alive must not exceed 65535s")
	// errKafkaBrokersRequired is returned when the kafka source lacks brokers.
	errKafkaBrokersRequired = errors.New("kafka.brokers must not be empty")
	// errPartialTelegram is returned when only one Telegram credential is set.
	errPartialTelegram = errors.New("notifier.telegram requires both bot_token and chat_id")
)

// Load reads configuration from the provided path, applies environment
// overrides and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	// Keys absent from the document keep these values.
	cfg := Config{MQTT: MQTTConfig{QoS: DefaultQoS}}
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	ApplyEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save validates cfg and writes it to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may hold secrets.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	if err := validateSource(cfg); err != nil {
		return err
	}

	if err := validateTopics(cfg.Topics); err != nil {
		return err
	}

	if err := validateNotifier(cfg.Notifier); err != nil {
		return err
	}

	if _, ok := logger.ParseLogLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}

	for name, addr := range map[string]string{
		"http": cfg.HTTP.ListenAddress,
		"grpc": cfg.GRPC.ListenAddress,
	} {
		if addr == "" {
			continue
		}

		if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
			return fmt.Errorf("invalid %s listen address: %w", name, err)
		}
	}

	return nil
}

// RangeSpecs converts the validated topic entries into range specs.
func (c *Config) RangeSpecs() []monitor.RangeSpec {
	specs := make([]monitor.RangeSpec, 0, len(c.Topics))
	for _, t := range c.Topics {
		specs = append(specs, t.rangeSpec())
	}

	return specs
}

// FindTopic returns the range spec of a configured topic.
func (c *Config) FindTopic(topic string) (monitor.RangeSpec, bool) {
	for _, t := range c.Topics {
		if t.Topic == topic {
			return t.rangeSpec(), true
		}
	}

	return monitor.RangeSpec{}, false
}

func (t TopicConfig) rangeSpec() monitor.RangeSpec {
	spec := monitor.RangeSpec{Topic: t.Topic}

	if t.MinValue != nil {
		spec.Min = *t.MinValue
	}

	if t.MaxValue != nil {
		spec.Max = *t.MaxValue
	}

	if t.Hysteresis != nil {
		spec.Hysteresis = *t.Hysteresis
	}

	return spec
}

func applyDefaults(cfg *Config) {
	if cfg.Source == "" {
		cfg.Source = SourceMQTT
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = DefaultClientID
	}

	if cfg.MQTT.KeepAlive <= 0 {
		cfg.MQTT.KeepAlive = DefaultKeepAlive
	}

	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultGroupID
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}

	if cfg.Log.File != "" && cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
}

func validateSource(cfg *Config) error {
	switch cfg.Source {
	case SourceMQTT:
		if cfg.MQTT.Broker == "" {
			return errBrokerRequired
		}

		u, err := url.Parse(cfg.MQTT.Broker)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid mqtt.broker %q: expected scheme://host:port", cfg.MQTT.Broker)
		}

		if cfg.MQTT.QoS > maxQoS {
			return errInvalidQoS
		}

		if cfg.MQTT.KeepAlive > maxKeepAlive {
			return errInvalidKeepAlive
		}
	case SourceKafka:
		if len(cfg.Kafka.Brokers) == 0 {
			return errKafkaBrokersRequired
		}
	default:
		return fmt.Errorf("%w, got %q", errUnknownSource, cfg.Source)
	}

	return nil
}

func validateTopics(topics []TopicConfig) error {
	if len(topics) == 0 {
		return errNoTopics
	}

	seen := make(map[string]struct{}, len(topics))

	for i, t := range topics {
		var missing string

		switch {
		case t.Topic == "":
			missing = "topic"
		case t.MinValue == nil:
			missing = "min_value"
		case t.MaxValue == nil:
			missing = "max_value"
		case t.Hysteresis == nil:
			missing = "hysteresis"
		}

		if missing != "" {
			return fmt.Errorf("topics[%d] %q: %w %q", i, t.Topic, errMissingKey, missing)
		}

		if _, ok := seen[t.Topic]; ok {
			return fmt.Errorf("topics[%d] %q: %w", i, t.Topic, errDuplicateTopic)
		}

		seen[t.Topic] = struct{}{}

		if err := t.rangeSpec().Validate(); err != nil {
			return fmt.Errorf("topics[%d]: %w", i, err)
		}
	}

	return nil
}

func validateNotifier(cfg NotifierConfig) error {
	if (cfg.Telegram.BotToken == "") != (cfg.Telegram.ChatID == "") {
		return errPartialTelegram
	}

	for i, w := range cfg.Webhooks {
		if _, err := url.ParseRequestURI(w.URL); err != nil {
			return fmt.Errorf("invalid notifier.webhooks[%d].url: %w", i, err)
		}
	}

	return nil
}
