package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override secrets from the YAML file.
const (
	EnvMQTTUsername     = "MQTT_USERNAME"
	EnvMQTTPassword     = "MQTT_PASSWORD"
	EnvTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID   = "TELEGRAM_CHAT_ID"

	// DefaultEnvFilename is read when present and no explicit file is given.
	DefaultEnvFilename = ".env"
)

// LoadEnvFile loads variables from a dotenv file into the process environment.
// Variables already set in the environment win. A missing default file is not
// an error, a missing explicit one is.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFilename
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load env file: %w", err)
}

// ApplyEnv overrides secrets with environment variables when they are set.
func ApplyEnv(cfg *Config) {
	overrides := []struct {
		name   string
		target *string
	}{
		{EnvMQTTUsername, &cfg.MQTT.Username},
		{EnvMQTTPassword, &cfg.MQTT.Password},
		{EnvTelegramBotToken, &cfg.Notifier.Telegram.BotToken},
		{EnvTelegramChatID, &cfg.Notifier.Telegram.ChatID},
	}

	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.name); ok && v != "" {
			*o.target = v
		}
	}
}
