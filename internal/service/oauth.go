package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
	"github.com/carecall/care-gateway/internal/ports"
)

// OAuthServiceOptions groups dependencies for OAuthService.
type OAuthServiceOptions struct {
	Provider ports.OAuthProvider
	Codec    ports.CredentialCodec
}

// OAuthService orchestrates the third-party login strategy. It completes
// the provider flow and then mints the same stateless session credential
// the email-code flow produces, so the gateway treats both identically.
type OAuthService struct {
	provider ports.OAuthProvider
	codec    ports.CredentialCodec
}

// NewOAuthService constructs a new OAuthService.
func NewOAuthService(opts OAuthServiceOptions) *OAuthService {
	return &OAuthService{
		provider: opts.Provider,
		codec:    opts.Codec,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates the provider flow and returns the auth URL with
// state and nonce for the caller to stash in short-lived cookies.
func (s *OAuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the minted credential for the verified identity.
type CompleteLoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  domainauth.Identity
}

// CompleteLogin exchanges the authorization code for an identity and mints
// a session credential for it.
func (s *OAuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	token, expiresAt, err := s.codec.Mint(identity.Email)
	if err != nil {
		return nil, fmt.Errorf("mint credential: %w", err)
	}

	return &CompleteLoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Identity:  identity,
	}, nil
}
