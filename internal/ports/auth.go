package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
)

// ErrPendingNotFound is returned by PendingStore implementations when no
// live pending verification exists for an email.
var ErrPendingNotFound = errors.New("pending verification not found")

// CredentialCodec mints and verifies the stateless session credential.
// Verify must reject tampered, foreign-signed, and expired tokens with an
// *domainauth.InvalidCredentialError; it never admits on uncertainty.
type CredentialCodec interface {
	Mint(email string) (token string, expiresAt time.Time, err error)
	Verify(token string) (domainauth.Identity, error)
}

// PendingStore persists pending one-time-code verifications keyed by
// lower-cased email. Put overwrites any prior entry for the same email.
// GetValid returns ErrPendingNotFound for missing or expired entries and
// never consumes; consumption is an explicit Delete.
type PendingStore interface {
	Put(ctx context.Context, pv domainauth.PendingVerification) error
	GetValid(ctx context.Context, email string) (domainauth.PendingVerification, error)
	Delete(ctx context.Context, email string) error
}

// CodeSender delivers a one-time code out of band. Implementations must
// honor ctx cancellation; the service bounds every send with a timeout.
type CodeSender interface {
	Send(ctx context.Context, email, code string) error
}

// BeginInput carries inputs for initiating a third-party auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// OAuthProvider initiates and completes an authentication flow against a
// third-party IdP. It is the second IdentityProvider strategy next to the
// first-party email-code flow; both end in CredentialCodec.Mint so the
// gateway never branches per provider.
type OAuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}
