package noopdelivery

// Package noopdelivery logs one-time codes instead of sending them.
// Development only; never enable in production.

import (
	"context"
	"log/slog"
)

// Sender implements ports.CodeSender by logging the code.
type Sender struct {
	logger *slog.Logger
}

// NewSender builds a logging sender.
func NewSender(logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{logger: logger}
}

// Send logs the code at warn level so it stands out in dev output.
func (s *Sender) Send(ctx context.Context, email, code string) error {
	s.logger.WarnContext(ctx, "noop delivery: login code not sent", "email", email, "code", code)
	return nil
}
