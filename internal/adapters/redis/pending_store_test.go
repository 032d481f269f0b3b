package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
	"github.com/carecall/care-gateway/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func pending(email, code string, ttl time.Duration) domainauth.PendingVerification {
	now := time.Now()
	return domainauth.PendingVerification{
		Email:     email,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestPendingStore_PutAndGetValid(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewPendingStore(client)
	ctx := context.Background()

	err := store.Put(ctx, pending("User@Example.com", "4821", 10*time.Minute))
	require.NoError(t, err)

	// Keys are normalized; look up with the lower-cased form.
	got, err := store.GetValid(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "4821", got.Code)
}

func TestPendingStore_GetValidDoesNotConsume(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewPendingStore(client)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, pending("user@example.com", "4821", 10*time.Minute)))

	_, err := store.GetValid(ctx, "user@example.com")
	require.NoError(t, err)

	// Still present until an explicit Delete.
	_, err = store.GetValid(ctx, "user@example.com")
	assert.NoError(t, err)
}

func TestPendingStore_PutOverwrites(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewPendingStore(client)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, pending("user@example.com", "1111", 10*time.Minute)))
	require.NoError(t, store.Put(ctx, pending("user@example.com", "2222", 10*time.Minute)))

	got, err := store.GetValid(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "2222", got.Code)
}

func TestPendingStore_GetValidMissing(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewPendingStore(client)

	_, err := store.GetValid(context.Background(), "nobody@example.com")
	assert.Equal(t, ErrNotFound, err)
}

func TestPendingStore_RejectsExpiredPut(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewPendingStore(client)

	err := store.Put(context.Background(), pending("user@example.com", "4821", -time.Minute))
	assert.Error(t, err)
}

func TestPendingStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewPendingStore(client)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, pending("user@example.com", "4821", 10*time.Minute)))
	require.NoError(t, store.Delete(ctx, "user@example.com"))

	_, err := store.GetValid(ctx, "user@example.com")
	assert.Equal(t, ErrNotFound, err)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ctx, "user@example.com"))
}
