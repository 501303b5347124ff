package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	// Redis is optional; when empty, room lifecycle events are not published.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	// External code-execution service (see services/sandbox).
	SandboxURL string `envconfig:"SANDBOX_URL" default:"http://sandbox-service:8081"`

	// How long an empty room keeps its host identity before it is deleted.
	GracePeriod time.Duration `envconfig:"ROOM_GRACE_PERIOD" default:"30s"`

	// Outbound frame buffer per client; slow consumers drop frames beyond it.
	SendBuffer int `envconfig:"SEND_BUFFER" default:"256"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.GracePeriod <= 0 {
		return errors.New("ROOM_GRACE_PERIOD must be positive")
	}
	if c.SendBuffer <= 0 {
		return errors.New("SEND_BUFFER must be positive")
	}
	return nil
}
