package token

// Package token implements the session credential codec: a signed,
// time-limited HS256 JWT carrying the subject email. Validity is determined
// purely by signature and expiry; nothing is stored server-side.

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
)

const issuer = "care-gateway"

// Codec mints and verifies session credentials with a server-held secret.
// It is stateless and safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Options configures a Codec.
type Options struct {
	// Secret is the HMAC signing key. Required; an absent secret would
	// otherwise let any token verify, so construction fails without one.
	Secret string

	// TTL is the credential lifetime. Defaults to 24h when zero.
	TTL time.Duration

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewCodec constructs a Codec. It fails closed on an empty secret.
func NewCodec(opts Options) (*Codec, error) {
	if opts.Secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Codec{secret: []byte(opts.Secret), ttl: ttl, now: now}, nil
}

// Mint issues a signed credential for the given subject email. The jti
// claim is a UUID so a revocation denylist can be added later without
// changing the token format.
func (c *Codec) Mint(email string) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   domainauth.NormalizeEmail(email),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks signature integrity and expiry and returns the embedded
// identity. Any violation yields an *domainauth.InvalidCredentialError.
func (c *Codec) Verify(tokenStr string) (domainauth.Identity, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domainauth.Identity{}, &domainauth.InvalidCredentialError{Reason: classify(err)}
	}
	if !tok.Valid || claims.Subject == "" {
		return domainauth.Identity{}, &domainauth.InvalidCredentialError{Reason: domainauth.ReasonMalformed}
	}

	return domainauth.Identity{Email: claims.Subject}, nil
}

func classify(err error) domainauth.CredentialReason {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domainauth.ReasonBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domainauth.ReasonExpired
	default:
		// Covers jwt.ErrTokenMalformed plus anything unrecognized; an
		// unknown failure must still reject.
		return domainauth.ReasonMalformed
	}
}
