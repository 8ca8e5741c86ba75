// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/tambola.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// RedisURL enables the cross-instance event relay when set.
	RedisURL string `env:"REDIS_URL"`

	CallingInterval    time.Duration `env:"CALLING_INTERVAL" envDefault:"3s"`
	DisconnectGrace    time.Duration `env:"DISCONNECT_GRACE" envDefault:"2m"`
	CompletedRoomGrace time.Duration `env:"COMPLETED_ROOM_GRACE" envDefault:"10m"`
	ReapInterval       time.Duration `env:"REAP_INTERVAL" envDefault:"30s"`

	// ChatRate is the sustained chat messages per second allowed on one
	// WebSocket connection.
	ChatRate  float64 `env:"CHAT_RATE" envDefault:"1"`
	ChatBurst int     `env:"CHAT_BURST" envDefault:"5"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	var errs []error
	positive := map[string]time.Duration{
		"CALLING_INTERVAL": c.CallingInterval,
		"REAP_INTERVAL":    c.ReapInterval,
	}
	for name, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.DisconnectGrace < 0 || c.CompletedRoomGrace < 0 {
		errs = append(errs, errors.New("grace periods must not be negative"))
	}
	if c.ChatRate <= 0 || c.ChatBurst < 1 {
		errs = append(errs, errors.New("CHAT_RATE must be positive and CHAT_BURST at least 1"))
	}
	return errors.Join(errs...)
}
