package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Credential and login-flow configuration
//   - delivery.go: One-time-code delivery configuration
//   - http.go: HTTP server, hostname, and backend proxy configuration
//   - store.go: Pending-verification store (Redis) configuration
type AppConfig struct {
	// IsDev controls development mode behavior (log-only code delivery,
	// in-memory store defaults, etc.). Set DEV=true for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Code delivery configuration
	Delivery DeliveryConfig

	// Pending-verification store configuration
	Redis RedisConfig `envPrefix:"REDIS_"`
	Store StoreConfig

	// HTTP server configuration
	HTTP HTTPConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.Delivery.Sanitize()
	c.HTTP.Sanitize()

	c.detectDevMode()
}

// detectDevMode checks both DEV and APP_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		appEnv := strings.ToLower(os.Getenv("APP_ENV"))
		c.IsDev = appEnv == "development" || appEnv == "dev"
	}
}
