package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
)

func newTestCodec(t *testing.T, now func() time.Time) *Codec {
	t.Helper()
	c, err := NewCodec(Options{Secret: "test-secret", TTL: time.Hour, Now: now})
	require.NoError(t, err)
	return c
}

func TestNewCodec_RequiresSecret(t *testing.T) {
	_, err := NewCodec(Options{Secret: ""})
	assert.Error(t, err)
}

func TestCodec_MintAndVerify(t *testing.T) {
	codec := newTestCodec(t, nil)

	tok, expiresAt, err := codec.Mint("User@Example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	identity, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", identity.Email)
}

func TestCodec_VerifyIsIdempotent(t *testing.T) {
	codec := newTestCodec(t, nil)

	tok, _, err := codec.Mint("user@example.com")
	require.NoError(t, err)

	first, err := codec.Verify(tok)
	require.NoError(t, err)
	second, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCodec_RejectsExpired(t *testing.T) {
	current := time.Now()
	codec := newTestCodec(t, func() time.Time { return current })

	tok, _, err := codec.Mint("user@example.com")
	require.NoError(t, err)

	// Advance the clock past the credential TTL.
	current = current.Add(time.Hour + time.Minute)

	_, err = codec.Verify(tok)
	require.Error(t, err)
	var ice *domainauth.InvalidCredentialError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, domainauth.ReasonExpired, ice.Reason)
}

func TestCodec_RejectsTamperedToken(t *testing.T) {
	codec := newTestCodec(t, nil)

	tok, _, err := codec.Mint("user@example.com")
	require.NoError(t, err)

	// Flip a byte in the signature segment; the signature no longer matches.
	raw := []byte(tok)
	i := strings.LastIndexByte(tok, '.') + 1
	if raw[i] == 'A' {
		raw[i] = 'B'
	} else {
		raw[i] = 'A'
	}

	_, err = codec.Verify(string(raw))
	require.Error(t, err)
	var ice *domainauth.InvalidCredentialError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, domainauth.ReasonBadSignature, ice.Reason)
}

func TestCodec_RejectsForeignSecret(t *testing.T) {
	minter, err := NewCodec(Options{Secret: "other-secret", TTL: time.Hour})
	require.NoError(t, err)
	verifier := newTestCodec(t, nil)

	tok, _, err := minter.Mint("user@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	require.Error(t, err)
	var ice *domainauth.InvalidCredentialError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, domainauth.ReasonBadSignature, ice.Reason)
}

func TestCodec_RejectsMalformed(t *testing.T) {
	codec := newTestCodec(t, nil)

	for _, tok := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := codec.Verify(tok)
		require.Error(t, err, "token %q should be rejected", tok)
		var ice *domainauth.InvalidCredentialError
		require.ErrorAs(t, err, &ice)
		assert.Equal(t, domainauth.ReasonMalformed, ice.Reason)
	}
}
