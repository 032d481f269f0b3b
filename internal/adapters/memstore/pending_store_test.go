package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
	"github.com/carecall/care-gateway/internal/ports"
)

func pending(email, code string, issued time.Time, ttl time.Duration) domainauth.PendingVerification {
	return domainauth.PendingVerification{
		Email:     email,
		Code:      code,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(ttl),
	}
}

func TestPendingStore_PutOverwrites(t *testing.T) {
	store := NewPendingStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, pending("User@Example.com", "1111", now, 10*time.Minute)))
	require.NoError(t, store.Put(ctx, pending("user@example.com", "2222", now, 10*time.Minute)))

	got, err := store.GetValid(ctx, "USER@example.com")
	require.NoError(t, err)
	assert.Equal(t, "2222", got.Code)
}

func TestPendingStore_ExpiryIsEnforcedOnRead(t *testing.T) {
	current := time.Now()
	store := NewPendingStoreWithClock(func() time.Time { return current })
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, pending("user@example.com", "4821", current, 10*time.Minute)))

	current = current.Add(11 * time.Minute)

	_, err := store.GetValid(ctx, "user@example.com")
	assert.ErrorIs(t, err, ports.ErrPendingNotFound)
}

func TestPendingStore_PutSweepsExpiredEntries(t *testing.T) {
	current := time.Now()
	store := NewPendingStoreWithClock(func() time.Time { return current })
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, pending("stale@example.com", "1111", current, time.Minute)))
	current = current.Add(2 * time.Minute)
	require.NoError(t, store.Put(ctx, pending("fresh@example.com", "2222", current, time.Minute)))

	store.mu.Lock()
	_, staleKept := store.entries["stale@example.com"]
	store.mu.Unlock()
	assert.False(t, staleKept)
}

func TestPendingStore_DeleteMissingIsNoOp(t *testing.T) {
	store := NewPendingStore()
	assert.NoError(t, store.Delete(context.Background(), "nobody@example.com"))
}

func TestPendingStore_ConcurrentDistinctEmails(t *testing.T) {
	store := NewPendingStore()
	ctx := context.Background()
	now := time.Now()

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			email := fmt.Sprintf("user%d@example.com", i)
			code := fmt.Sprintf("%04d", i)
			assert.NoError(t, store.Put(ctx, pending(email, code, now, 10*time.Minute)))
			got, err := store.GetValid(ctx, email)
			if assert.NoError(t, err) {
				assert.Equal(t, code, got.Code)
			}
		}()
	}
	wg.Wait()
}
