package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents which login strategies the gateway offers.
type AuthMode string

const (
	// AuthModeEmail offers only the first-party email one-time-code flow.
	AuthModeEmail AuthMode = "email"
	// AuthModeOAuth offers the email flow plus the OAuth/OIDC strategy.
	AuthModeOAuth AuthMode = "oauth"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "email", "oauth":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: email, oauth)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration for the third-party strategy.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/login/oauth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which login strategies are registered.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"email"`

	// SessionSecret signs session credentials. The server refuses to start
	// without it.
	SessionSecret string `env:"SESSION_SECRET,required,notEmpty"`

	// SessionTTL is how long a minted credential stays valid.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// CodeTTL is how long an issued one-time code stays valid.
	CodeTTL time.Duration `env:"CODE_TTL" envDefault:"10m"`

	// CodeRequestLimit and CodeRequestWindow bound how many code requests
	// one email may make within the window.
	CodeRequestLimit  int           `env:"CODE_REQUEST_LIMIT" envDefault:"5"`
	CodeRequestWindow time.Duration `env:"CODE_REQUEST_WINDOW" envDefault:"15m"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL <= 0 {
		a.SessionTTL = 24 * time.Hour
	}
	if a.CodeTTL <= 0 {
		a.CodeTTL = 10 * time.Minute
	}
	if a.CodeRequestLimit <= 0 {
		a.CodeRequestLimit = 5
	}
	if a.CodeRequestWindow <= 0 {
		a.CodeRequestWindow = 15 * time.Minute
	}
}
