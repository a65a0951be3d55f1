// Package config loads client configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is everything a PenQuest client process needs to run.
type Config struct {
	// GatewayURL is the websocket endpoint of the game gateway.
	GatewayURL string `yaml:"gateway_url" env:"PENQUEST_GATEWAY_URL"`

	// AwaitTimeout bounds waits for single gateway replies.
	AwaitTimeout time.Duration `yaml:"await_timeout" env:"PENQUEST_AWAIT_TIMEOUT"`
	// InteractionTimeout bounds waits for the next required decision.
	InteractionTimeout time.Duration `yaml:"interaction_timeout" env:"PENQUEST_INTERACTION_TIMEOUT"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"PENQUEST_LOG_LEVEL"`
	// LogJSON switches the log output from console lines to JSON.
	LogJSON bool `yaml:"log_json" env:"PENQUEST_LOG_JSON"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		GatewayURL:         "ws://localhost:8080/ws",
		AwaitTimeout:       30 * time.Second,
		InteractionTimeout: 240 * time.Second,
		LogLevel:           "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path if it
// exists, then environment overrides. An empty path skips the file step.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// No file is fine; env and defaults carry it.
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.GatewayURL == "" {
		return errors.New("gateway_url must not be empty")
	}
	if c.AwaitTimeout <= 0 {
		return fmt.Errorf("await_timeout must be positive, got %v", c.AwaitTimeout)
	}
	if c.InteractionTimeout <= 0 {
		return fmt.Errorf("interaction_timeout must be positive, got %v", c.InteractionTimeout)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Logger builds a zap logger according to the log settings.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if !c.LogJSON {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
