package redis

// Package redis provides Redis-based adapters for the care gateway.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
	"github.com/carecall/care-gateway/internal/ports"
)

// PendingStore is a Redis-backed store for pending one-time-code
// verifications. Redis TTL enforces expiry server-side; entries are also
// expiry-checked on read so a lagging eviction can never revive a code.
type PendingStore struct {
	client redis.UniversalClient
	prefix string
}

// NewPendingStore creates a Redis-based pending verification store.
func NewPendingStore(client redis.UniversalClient) *PendingStore {
	return &PendingStore{
		client: client,
		prefix: "pending:",
	}
}

// NewPendingStoreWithPrefix creates a pending store with a custom key prefix.
func NewPendingStoreWithPrefix(client redis.UniversalClient, prefix string) *PendingStore {
	return &PendingStore{
		client: client,
		prefix: prefix,
	}
}

// Put stores a pending verification, overwriting any prior entry for the
// same email. Only the most recent code is ever valid.
func (s *PendingStore) Put(ctx context.Context, pv domainauth.PendingVerification) error {
	if pv.Email == "" {
		return errors.New("pending verification email cannot be empty")
	}

	data, err := json.Marshal(pv)
	if err != nil {
		return fmt.Errorf("marshal pending verification: %w", err)
	}

	ttl := time.Until(pv.ExpiresAt)
	if ttl <= 0 {
		return errors.New("pending verification is already expired")
	}

	key := s.prefix + domainauth.NormalizeEmail(pv.Email)
	return s.client.Set(ctx, key, data, ttl).Err()
}

// GetValid returns the live pending verification for an email, or
// ErrNotFound when none exists or the entry has expired. It never consumes.
func (s *PendingStore) GetValid(ctx context.Context, email string) (domainauth.PendingVerification, error) {
	email = domainauth.NormalizeEmail(email)
	if email == "" {
		return domainauth.PendingVerification{}, ErrNotFound
	}

	key := s.prefix + email
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.PendingVerification{}, ErrNotFound
		}
		return domainauth.PendingVerification{}, fmt.Errorf("redis get: %w", err)
	}

	var pv domainauth.PendingVerification
	if unmarshalErr := json.Unmarshal([]byte(data), &pv); unmarshalErr != nil {
		return domainauth.PendingVerification{}, fmt.Errorf("unmarshal pending verification: %w", unmarshalErr)
	}

	if pv.Expired(time.Now()) {
		if deleteErr := s.Delete(ctx, email); deleteErr != nil {
			return domainauth.PendingVerification{}, fmt.Errorf("cleanup expired verification: %w", deleteErr)
		}
		return domainauth.PendingVerification{}, ErrNotFound
	}

	return pv, nil
}

// Delete removes the pending verification for an email. Deleting a missing
// entry is not an error.
func (s *PendingStore) Delete(ctx context.Context, email string) error {
	email = domainauth.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	return s.client.Del(ctx, s.prefix+email).Err()
}

// ErrNotFound aliases the ports sentinel so callers of this adapter can
// check either symbol.
var ErrNotFound = ports.ErrPendingNotFound
