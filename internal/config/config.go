// Package config loads immutable process configuration from the
// environment. It is constructed once in main and passed by reference;
// request handling never reads ambient state.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/and161185/esc-ranker/internal/token"
)

// Config holds runtime settings for the ranking server.
type Config struct {
	Addr        string `env:"ADDR" envDefault:":8080"`
	DatabaseDSN string `env:"DATABASE_DSN"`

	// SigningKey is the HS256 secret for bearer tokens, at least 32 bytes.
	SigningKey string        `env:"JWT_SIGNING_KEY"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	// TokenIssuer/TokenAudience enable iss/aud validation when set.
	// Both are empty by default, which disables the checks.
	TokenIssuer   string `env:"TOKEN_ISSUER"`
	TokenAudience string `env:"TOKEN_AUDIENCE"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the startup invariants. The process must refuse to
// start rather than run insecurely.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if len(c.SigningKey) < token.MinKeyLen {
		return fmt.Errorf("JWT_SIGNING_KEY must be at least %d bytes, got %d", token.MinKeyLen, len(c.SigningKey))
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}
