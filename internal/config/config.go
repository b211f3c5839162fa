package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"8000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Auth service
	AuthServiceURL string        `envconfig:"AUTH_SERVICE_URL" default:"http://localhost:8001"`
	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true"`
	AuthTimeout    time.Duration `envconfig:"AUTH_TIMEOUT" default:"5s"`

	// WebSocket
	HeartbeatInterval time.Duration `envconfig:"WS_HEARTBEAT_INTERVAL" default:"30s"`
	WriteTimeout      time.Duration `envconfig:"WS_WRITE_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
