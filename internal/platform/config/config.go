package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"3030"`
	BaseURL   string `env:"BASE_URL" default:"http://localhost:3030"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// DisplayName is the sender name stamped on every broadcast message.
	DisplayName string `env:"DISPLAY_NAME" default:"someone"`

	// Connection admission limits. Zero or negative disables the limit.
	MaxConnections       int     `env:"MAX_CONNECTIONS" default:"10000"`
	MaxConnectionsPerIP  int     `env:"MAX_CONNECTIONS_PER_IP" default:"64"`
	ConnectionRatePerIP  float64 `env:"CONNECTION_RATE_PER_IP" default:"10"`
	ConnectionBurstPerIP int     `env:"CONNECTION_BURST_PER_IP" default:"20"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DisplayName == "" {
		return errors.New("DISPLAY_NAME must not be empty")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("BASE_URL must be a valid URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return errors.New("BASE_URL must be an absolute URL with scheme and host")
	}

	if cfg.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}

	return nil
}
