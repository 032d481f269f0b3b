package auth

// Package auth contains domain-level types for authentication.
// It is pure and free of framework/adapter concerns.

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Identity is the authenticated principal for one request. It is derived
// from a verified credential, attached to the request context by the
// gateway, and never persisted.
type Identity struct {
	Email string
}

// PendingVerification is a one-time login code awaiting confirmation.
// Keyed by lower-cased email; at most one live entry exists per email.
type PendingVerification struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the pending code is past its TTL at the given time.
func (p PendingVerification) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// NormalizeEmail lower-cases and trims an email address. All pending-store
// keys and credential subjects use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Code-issuance and verification failures. The HTTP layer surfaces the
// three verification kinds uniformly as "invalid code" so callers cannot
// probe which emails have a pending code.
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrDeliveryFailed     = errors.New("code delivery failed")
	ErrRateLimited        = errors.New("too many code requests")
	ErrNoSuchVerification = errors.New("no pending verification for email")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrCodeMismatch       = errors.New("verification code mismatch")
)

// CredentialReason classifies why a session credential was rejected.
type CredentialReason string

const (
	ReasonMalformed    CredentialReason = "malformed"
	ReasonBadSignature CredentialReason = "bad-signature"
	ReasonExpired      CredentialReason = "expired"
)

// InvalidCredentialError is returned by the credential codec when a token
// fails validation. The reason is for logs only; clients always receive a
// uniform rejection.
type InvalidCredentialError struct {
	Reason CredentialReason
}

func (e *InvalidCredentialError) Error() string {
	return fmt.Sprintf("invalid credential: %s", e.Reason)
}

// IsInvalidCredential reports whether err is a credential validation failure.
func IsInvalidCredential(err error) bool {
	var ice *InvalidCredentialError
	return errors.As(err, &ice)
}
