package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://care.example.com").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// PrimaryHost, when set, makes the gateway redirect any other hostname
	// to it before authentication. Leave empty to serve all hostnames.
	PrimaryHost string `env:"APP_PRIMARY_HOST" envDefault:""`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// BackendURL is the base URL of the backend API every admitted request
	// is proxied to.
	BackendURL string `env:"BACKEND_URL" envDefault:"http://localhost:8000"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.BaseURL = strings.TrimRight(h.BaseURL, "/")
	h.BackendURL = strings.TrimRight(h.BackendURL, "/")
}
