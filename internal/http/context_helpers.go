package httpx

import (
	"context"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
)

// identityKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type identityKey struct{}

// credentialKey carries the raw signed credential for the backend proxy.
type credentialKey struct{}

// SetIdentityInContext returns a child context carrying the authenticated identity.
func SetIdentityInContext(ctx context.Context, identity domainauth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the authenticated identity from context and a
// boolean indicating presence.
func IdentityFromContext(ctx context.Context) (domainauth.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(domainauth.Identity)
	return identity, ok
}

// SetCredentialInContext returns a child context carrying the raw signed
// credential. Only the gateway middleware writes it and only the backend
// proxy reads it; it must never appear in logs or response bodies.
func SetCredentialInContext(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, credentialKey{}, token)
}

// CredentialFromContext returns the raw signed credential from context.
func CredentialFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(credentialKey{}).(string)
	return token, ok
}
