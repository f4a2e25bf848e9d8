// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Session  SessionConfig  `toml:"session"`
	Speech   SpeechConfig   `toml:"speech"`
	Practice PracticeConfig `toml:"practice"`
}

// ServerConfig maps HTTP server settings.
type ServerConfig struct {
	Addr       *string `toml:"addr"`
	CORSOrigin *string `toml:"cors-origin"`
}

// DatabaseConfig maps database settings.
type DatabaseConfig struct {
	URL *string `toml:"url"`
}

// AuthConfig maps token settings.
type AuthConfig struct {
	SecretKey       *string `toml:"secret-key"`
	TokenTTLMinutes *int    `toml:"token-ttl-minutes"`
}

// SessionConfig maps reading session settings.
type SessionConfig struct {
	DefaultDuration      *int `toml:"default-duration"`
	StaleAfterMinutes    *int `toml:"stale-after-minutes"`
	SweepIntervalMinutes *int `toml:"sweep-interval-minutes"`
}

// SpeechConfig maps the speech-to-text proxy settings.
type SpeechConfig struct {
	DeepgramURL *string `toml:"deepgram-url"`
	Language    *string `toml:"language"`
	Model       *string `toml:"model"`
}

// PracticeConfig maps terminal practice settings.
type PracticeConfig struct {
	Level      *int     `toml:"level"`
	Words      *int     `toml:"words"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
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
