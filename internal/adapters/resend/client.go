package resend

// Package resend delivers one-time login codes through the Resend email
// API (https://resend.com). It is the production delivery collaborator.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://api.resend.com/emails"

// Config captures the subset of the Resend API behaviour we need.
type Config struct {
	APIKey     string
	From       string
	Endpoint   string // defaults to the public Resend API
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client posts login-code emails to the Resend API.
type Client struct {
	apiKey     string
	from       string
	endpoint   string
	retryLimit int
	client     *http.Client
}

// NewClient builds a Resend client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("resend api key is required")
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		return nil, errors.New("resend from address is required")
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	retries := cfg.RetryLimit
	if retries < 0 {
		retries = 0
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		apiKey:     apiKey,
		from:       from,
		endpoint:   endpoint,
		retryLimit: retries,
		client:     hc,
	}, nil
}

// Send posts the one-time code email. Transport errors are retried with a
// short linear backoff inside the caller's deadline; API-level rejections
// (4xx) are not retried.
func (c *Client) Send(ctx context.Context, email, code string) error {
	body, err := json.Marshal(map[string]any{
		"from":    c.from,
		"to":      []string{email},
		"subject": "Your CareCall login code",
		"html":    formatMessage(code),
	})
	if err != nil {
		return fmt.Errorf("encode resend payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := range attempts {
		err = c.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.status < http.StatusInternalServerError {
			return err
		}

		if attempt < attempts-1 {
			// Simple linear backoff to avoid thundering retries.
			delay := time.Duration(attempt+1) * 200 * time.Millisecond
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return lastErr
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to resend: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &apiError{status: resp.StatusCode}
	}
	return nil
}

// apiError carries only the status; the response body may echo recipient
// addresses and is never included.
type apiError struct {
	status int
}

func (e *apiError) Error() string {
	return fmt.Sprintf("resend api status %d", e.status)
}

func formatMessage(code string) string {
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:600px;margin:0 auto">
  <h1>CareCall</h1>
  <p>Here's your verification code to complete your login:</p>
  <p style="font-size:32px;font-weight:bold;letter-spacing:4px;text-align:center">%s</p>
  <p>This code will expire in 10 minutes.</p>
  <p>If you didn't request this code, please ignore this email.</p>
</div>`, code)
}
