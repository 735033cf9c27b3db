// Package config loads huddle's settings from file, environment and
// defaults, in that order of increasing precedence for the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Homeserver is the base URL of the messaging homeserver.
	Homeserver string `mapstructure:"homeserver"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`

	// TokenRelay is the base URL of the voice token relay.
	TokenRelay string `mapstructure:"token_relay"`

	// PlaybackRate is the rate to open the output device at.
	PlaybackRate uint32 `mapstructure:"playback_rate"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads huddle.yaml from the working directory or ./config, then applies
// HUDDLE_* environment overrides. A missing file is fine; missing credentials
// are not.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("huddle")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("homeserver", "http://localhost:8448")
	v.SetDefault("token_relay", "http://localhost:8090")
	v.SetDefault("playback_rate", 48000)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("HUDDLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.User == "" || cfg.Password == "" {
		return nil, errors.New("user and password are required")
	}
	return &cfg, nil
}
