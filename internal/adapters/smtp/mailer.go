package smtp

// Package smtp delivers one-time login codes over plain SMTP, for
// deployments that cannot use the hosted email API.

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
	Timeout  time.Duration // connection and IO deadline, defaults to 10s
}

// Mailer sends login-code emails through an SMTP relay.
type Mailer struct {
	addr     string
	host     string
	from     string
	username string
	password string
	timeout  time.Duration
}

// NewMailer builds an SMTP mailer.
func NewMailer(cfg Config) (*Mailer, error) {
	if cfg.Host == "" || cfg.Port == "" {
		return nil, errors.New("smtp host and port are required")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mailer{
		addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		host:     cfg.Host,
		from:     cfg.From,
		username: cfg.Username,
		password: cfg.Password,
		timeout:  timeout,
	}, nil
}

// Send delivers the code email. The whole exchange runs under a single
// connection deadline so a stalled relay cannot hang the login request.
func (m *Mailer) Send(ctx context.Context, email, code string) error {
	dialer := &net.Dialer{Timeout: m.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return fmt.Errorf("dial smtp relay: %w", err)
	}

	deadline := time.Now().Add(m.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err = conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return fmt.Errorf("set smtp deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err = client.StartTLS(&tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err = client.Mail(m.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err = client.Rcpt(email); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err = wc.Write(m.message(email, code)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("smtp finish body: %w", err)
	}

	return client.Quit()
}

func (m *Mailer) message(email, code string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", email)
	b.WriteString("Subject: Your CareCall login code\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your verification code is %s. It expires in 10 minutes.\r\n", code)
	return []byte(b.String())
}
