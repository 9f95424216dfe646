// Package config defines the monitor settings and provides helpers to load
// and validate them from a YAML file.
//
// Secrets (broker credentials, Telegram token) may also come from the process
// environment or an optional .env file, which take precedence over the YAML.
package config
