package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
	"github.com/carecall/care-gateway/internal/mocks"
	"github.com/carecall/care-gateway/internal/ports"
)

func TestOAuthService_BeginLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := mocks.NewMockOAuthProvider(ctrl)
	codec := mocks.NewMockCredentialCodec(ctrl)
	svc := NewOAuthService(OAuthServiceOptions{Provider: provider, Codec: codec})

	provider.EXPECT().
		Begin(gomock.Any(), ports.BeginInput{RedirectURL: "https://care.example.com/login/oauth/callback"}).
		Return("https://idp.example.com/authorize?state=abc", "abc", "def", nil)

	result, err := svc.BeginLogin(context.Background(), "https://care.example.com/login/oauth/callback")
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com/authorize?state=abc", result.AuthURL)
	assert.Equal(t, "abc", result.State)
	assert.Equal(t, "def", result.Nonce)
}

func TestOAuthService_BeginLoginRequiresRedirectURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewOAuthService(OAuthServiceOptions{
		Provider: mocks.NewMockOAuthProvider(ctrl),
		Codec:    mocks.NewMockCredentialCodec(ctrl),
	})

	_, err := svc.BeginLogin(context.Background(), "")
	assert.Error(t, err)
}

func TestOAuthService_CompleteLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := mocks.NewMockOAuthProvider(ctrl)
	codec := mocks.NewMockCredentialCodec(ctrl)
	svc := NewOAuthService(OAuthServiceOptions{Provider: provider, Codec: codec})

	expiry := time.Now().Add(24 * time.Hour)
	provider.EXPECT().
		Exchange(gomock.Any(), ports.ExchangeInput{Code: "authcode", State: "abc", Nonce: "def"}).
		Return(domainauth.Identity{Email: "user@example.com"}, nil)
	codec.EXPECT().
		Mint("user@example.com").
		Return("signed-token", expiry, nil)

	result, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:  "authcode",
		State: "abc",
		Nonce: "def",
	})
	require.NoError(t, err)
	assert.Equal(t, "signed-token", result.Token)
	assert.Equal(t, expiry, result.ExpiresAt)
	assert.Equal(t, "user@example.com", result.Identity.Email)
}

func TestOAuthService_CompleteLoginValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewOAuthService(OAuthServiceOptions{
		Provider: mocks.NewMockOAuthProvider(ctrl),
		Codec:    mocks.NewMockCredentialCodec(ctrl),
	})

	tests := []struct {
		name  string
		input CompleteLoginInput
	}{
		{"missing code", CompleteLoginInput{State: "abc", Nonce: "def"}},
		{"missing state", CompleteLoginInput{Code: "authcode", Nonce: "def"}},
		{"missing nonce", CompleteLoginInput{Code: "authcode", State: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CompleteLogin(context.Background(), tt.input)
			assert.Error(t, err)
		})
	}
}

func TestOAuthService_CompleteLoginExchangeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := mocks.NewMockOAuthProvider(ctrl)
	svc := NewOAuthService(OAuthServiceOptions{
		Provider: provider,
		Codec:    mocks.NewMockCredentialCodec(ctrl),
	})

	provider.EXPECT().
		Exchange(gomock.Any(), gomock.Any()).
		Return(domainauth.Identity{}, errors.New("provider rejected code"))

	_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:  "authcode",
		State: "abc",
		Nonce: "def",
	})
	assert.ErrorContains(t, err, "exchange authorization code")
}
