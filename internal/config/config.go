package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings for the API process. Values come from the
// environment; a .env file may be loaded by main before parsing.
type Config struct {
	Port      string `env:"PORT" envDefault:"5000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	DatabaseURL string `env:"DB_URL,required"`
	RedisURL    string `env:"REDIS_URL"`

	// Websocket tuning. Defaults mirror the values we ran with in production.
	WSReadLimit    int64         `env:"WS_READ_LIMIT" envDefault:"1048576"`
	WSReadTimeout  time.Duration `env:"WS_READ_TIMEOUT" envDefault:"60s"`
	WSWriteTimeout time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"10s"`
	WSSendBuffer   int           `env:"WS_SEND_BUFFER" envDefault:"128"`

	// MembershipCacheTTL bounds how stale a cached participant list may be.
	MembershipCacheTTL time.Duration `env:"MEMBERSHIP_CACHE_TTL" envDefault:"5m"`
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}
