// Package mocks provides mock implementations for testing the gateway's auth ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the interfaces in internal/ports. To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

// Generate mock for PendingStore (Put, GetValid, Delete).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=pending_store_mock.go github.com/carecall/care-gateway/internal/ports PendingStore

// Generate mock for CodeSender (Send).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=code_sender_mock.go github.com/carecall/care-gateway/internal/ports CodeSender

// Generate mock for CredentialCodec (Mint, Verify).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_codec_mock.go github.com/carecall/care-gateway/internal/ports CredentialCodec

// Generate mock for OAuthProvider (Begin, Exchange).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=oauth_provider_mock.go github.com/carecall/care-gateway/internal/ports OAuthProvider
