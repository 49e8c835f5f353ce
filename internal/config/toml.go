// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Remote  RemoteConfig  `toml:"remote"`
	Sync    SyncConfig    `toml:"sync"`
	Session SessionConfig `toml:"session"`
}

// RemoteConfig maps remote store settings. The API key usually comes
// from the environment; a value here overrides it.
type RemoteConfig struct {
	Endpoint *string `toml:"endpoint"`
	APIKey   *string `toml:"api-key"`
}

// SyncConfig maps retry queue settings. Durations are in seconds.
type SyncConfig struct {
	IntervalSec     *int `toml:"interval"`
	InitialDelaySec *int `toml:"initial-delay"`
	BackoffSec      *int `toml:"backoff"`
	MaxRetries      *int `toml:"max-retries"`
}

// SessionConfig maps typing session settings.
type SessionConfig struct {
	AllowBackspace *bool `toml:"allow-backspace"`
	TimeLimitSec   *int  `toml:"time-limit"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
