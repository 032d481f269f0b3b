package config

import (
	"fmt"
	"strings"
	"time"
)

// DeliveryProvider selects how one-time codes reach the user.
type DeliveryProvider string

const (
	// DeliveryResend sends codes through the Resend email API.
	DeliveryResend DeliveryProvider = "resend"
	// DeliverySMTP sends codes through a plain SMTP relay.
	DeliverySMTP DeliveryProvider = "smtp"
	// DeliveryLog writes codes to the server log. Development only.
	DeliveryLog DeliveryProvider = "log"
)

// UnmarshalText implements encoding.TextUnmarshaler for DeliveryProvider.
func (d *DeliveryProvider) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "resend", "smtp", "log":
		*d = DeliveryProvider(v)
		return nil
	default:
		return fmt.Errorf("invalid DeliveryProvider: %q (valid options: resend, smtp, log)", v)
	}
}

// ResendConfig contains Resend email API configuration.
type ResendConfig struct {
	APIKey     string        `env:"API_KEY"`
	From       string        `env:"FROM"        envDefault:"CareCall <login@carecall.example>"`
	Timeout    time.Duration `env:"TIMEOUT"     envDefault:"5s"`
	RetryLimit int           `env:"RETRY_LIMIT" envDefault:"2"`
}

// SMTPConfig contains SMTP relay configuration.
type SMTPConfig struct {
	Host     string        `env:"HOST"     envDefault:"localhost"`
	Port     int           `env:"PORT"     envDefault:"587"`
	Username string        `env:"USERNAME"`
	Password string        `env:"PASSWORD"`
	From     string        `env:"FROM"     envDefault:"login@carecall.example"`
	Timeout  time.Duration `env:"TIMEOUT"  envDefault:"5s"`
}

// DeliveryConfig groups one-time-code delivery configuration.
type DeliveryConfig struct {
	// Provider selects the delivery adapter.
	Provider DeliveryProvider `env:"DELIVERY_PROVIDER" envDefault:"resend"`

	// Timeout bounds each delivery attempt end to end.
	Timeout time.Duration `env:"DELIVERY_TIMEOUT" envDefault:"5s"`

	Resend ResendConfig `envPrefix:"RESEND_"`
	SMTP   SMTPConfig   `envPrefix:"SMTP_"`
}

// Sanitize applies guardrails to delivery configuration values.
func (d *DeliveryConfig) Sanitize() {
	if d.Timeout <= 0 {
		d.Timeout = 5 * time.Second
	}
	if d.Resend.RetryLimit < 0 {
		d.Resend.RetryLimit = 0
	}
	if d.SMTP.Port <= 0 || d.SMTP.Port > 65535 {
		d.SMTP.Port = 587
	}
}
