package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/range-monitor/internal/domain/monitor"
)

const validYAML = `
source: mqtt
mqtt:
  broker: tcp://localhost:1883
topics:
  - topic: sensors/boiler/temperature
    min_value: 10
    max_value: 35
    hysteresis: 0.2
  - topic: sensors/tank/level
    min_value: 0
    max_value: 100
    hysteresis: 0
notifier:
  webhooks:
    - url: https://hooks.example.com/x
http:
  listen_address: "127.0.0.1:9100"
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "range-monitor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

func ptr(v float64) *float64 {
	return &v
}

func validConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{Broker: "tcp://localhost:1883"},
		Topics: []TopicConfig{{
			Topic:      "a",
			MinValue:   ptr(10),
			MaxValue:   ptr(35),
			Hysteresis: ptr(0.2),
		}},
	}
}

// TestLoad_Defaults checks that a minimal file is loaded and defaults are filled in.
//
//nolint:paralleltest // Reads process environment overrides.
func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvMQTTUsername, "")
	t.Setenv(EnvTelegramBotToken, "")
	t.Setenv(EnvTelegramChatID, "")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	require.Equal(t, SourceMQTT, cfg.Source)
	require.Equal(t, DefaultClientID, cfg.MQTT.ClientID)
	require.Equal(t, byte(DefaultQoS), cfg.MQTT.QoS)
	require.Equal(t, DefaultKeepAlive, cfg.MQTT.KeepAlive)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultLogLevel, cfg.Log.Level)
	require.Equal(t, "127.0.0.1:9100", cfg.HTTP.ListenAddress)

	require.Equal(t, []monitor.RangeSpec{
		{Topic: "sensors/boiler/temperature", Min: 10, Max: 35, Hysteresis: 0.2},
		{Topic: "sensors/tank/level", Min: 0, Max: 100, Hysteresis: 0},
	}, cfg.RangeSpecs())

	spec, ok := cfg.FindTopic("sensors/tank/level")
	require.True(t, ok)
	require.InDelta(t, 100.0, spec.Max, 0)

	_, ok = cfg.FindTopic("unknown")
	require.False(t, ok)
}

// TestLoad_Errors covers unreadable and malformed files.
func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read settings")

	_, err = Load(writeConfig(t, "topics: [::"))
	require.ErrorContains(t, err, "unmarshal settings")
}

// TestValidate_Topics checks required keys, duplicates and range constraints.
func TestValidate_Topics(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)

	cfg := validConfig()
	cfg.Topics = nil
	require.ErrorIs(t, Validate(cfg), errNoTopics)

	cfg = validConfig()
	cfg.Topics[0].Hysteresis = nil
	err := Validate(cfg)
	require.ErrorIs(t, err, errMissingKey)
	require.ErrorContains(t, err, "hysteresis")

	cfg = validConfig()
	cfg.Topics = append(cfg.Topics, cfg.Topics[0])
	require.ErrorIs(t, Validate(cfg), errDuplicateTopic)

	cfg = validConfig()
	cfg.Topics[0].MinValue = ptr(40)
	err = Validate(cfg)
	require.ErrorIs(t, err, monitor.ErrEmptyRange)
	require.ErrorContains(t, err, `"a"`)

	cfg = validConfig()
	cfg.Topics[0].Hysteresis = ptr(12.5)
	require.ErrorIs(t, Validate(cfg), monitor.ErrHysteresisTooWide)

	cfg = validConfig()
	cfg.Topics[0].Hysteresis = ptr(0)
	require.NoError(t, Validate(cfg))
}

// TestValidate_Source checks source specific requirements.
func TestValidate_Source(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.MQTT.Broker = ""
	require.ErrorIs(t, Validate(cfg), errBrokerRequired)

	cfg = validConfig()
	cfg.MQTT.Broker = "localhost"
	require.Error(t, Validate(cfg))

	cfg = validConfig()
	cfg.MQTT.QoS = 3
	require.ErrorIs(t, Validate(cfg), errInvalidQoS)

	cfg = validConfig()
	cfg.MQTT.KeepAlive = 65536 * time.Second
	require.ErrorIs(t, Validate(cfg), errInvalidKeepAlive)

	cfg = validConfig()
	cfg.MQTT.KeepAlive = 65535 * time.Second
	require.NoError(t, Validate(cfg))

	cfg = validConfig()
	cfg.Source = "amqp"
	require.ErrorIs(t, Validate(cfg), errUnknownSource)

	cfg = validConfig()
	cfg.Source = SourceKafka
	require.ErrorIs(t, Validate(cfg), errKafkaBrokersRequired)

	cfg.Kafka.Brokers = []string{"localhost:9092"}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultGroupID, cfg.Kafka.GroupID)
}

// TestValidate_Misc covers notifier, log and listener settings.
func TestValidate_Misc(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Notifier.Telegram.BotToken = "token"
	require.ErrorIs(t, Validate(cfg), errPartialTelegram)

	cfg.Notifier.Telegram.ChatID = "42"
	require.NoError(t, Validate(cfg))
	require.True(t, cfg.Notifier.Telegram.Enabled())

	cfg = validConfig()
	cfg.Notifier.Webhooks = []WebhookConfig{{URL: "not a url"}}
	require.Error(t, Validate(cfg))

	cfg = validConfig()
	cfg.Log.Level = "chatty"
	require.ErrorContains(t, Validate(cfg), "invalid log level")

	cfg = validConfig()
	cfg.GRPC.ListenAddress = "bad:address"
	require.ErrorContains(t, Validate(cfg), "grpc listen address")

	cfg = validConfig()
	cfg.Log.File = filepath.Join(t.TempDir(), "x.log")
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultLogMaxSizeMB, cfg.Log.MaxSizeMB)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
//
//nolint:paralleltest // Load reads process environment overrides.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Setenv(EnvMQTTUsername, "")
	t.Setenv(EnvMQTTPassword, "")

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := validConfig()
	cfg.MQTT.QoS = 0
	cfg.Timeout = 3 * time.Second

	require.ErrorIs(t, Save(path, nil), errConfigIsNotSet)
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.RangeSpecs(), loaded.RangeSpecs())
	require.Equal(t, byte(0), loaded.MQTT.QoS)
	require.Equal(t, 3*time.Second, loaded.Timeout)
}
