package memstore

// Package memstore provides an in-process pending verification store for
// development and tests. Production deployments use the Redis adapter.

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
	"github.com/carecall/care-gateway/internal/ports"
)

// PendingStore keeps pending verifications in a mutex-guarded map.
// Expired entries are dropped lazily on read and whenever Put runs, so the
// map stays bounded by the number of emails with a live code.
type PendingStore struct {
	mu      sync.Mutex
	entries map[string]domainauth.PendingVerification
	now     func() time.Time
}

// NewPendingStore creates an empty in-memory store.
func NewPendingStore() *PendingStore {
	return &PendingStore{
		entries: make(map[string]domainauth.PendingVerification),
		now:     time.Now,
	}
}

// NewPendingStoreWithClock creates a store with an injected clock, for tests.
func NewPendingStoreWithClock(now func() time.Time) *PendingStore {
	return &PendingStore{
		entries: make(map[string]domainauth.PendingVerification),
		now:     now,
	}
}

// Put stores a pending verification, overwriting any prior entry for the
// same email, and sweeps expired entries.
func (s *PendingStore) Put(_ context.Context, pv domainauth.PendingVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
		}
	}

	s.entries[domainauth.NormalizeEmail(pv.Email)] = pv
	return nil
}

// GetValid returns the live entry for an email or ports.ErrPendingNotFound.
// Expired entries are removed on sight.
func (s *PendingStore) GetValid(_ context.Context, email string) (domainauth.PendingVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domainauth.NormalizeEmail(email)
	entry, ok := s.entries[key]
	if !ok {
		return domainauth.PendingVerification{}, ports.ErrPendingNotFound
	}
	if entry.Expired(s.now()) {
		delete(s.entries, key)
		return domainauth.PendingVerification{}, ports.ErrPendingNotFound
	}
	return entry, nil
}

// Delete removes the entry for an email. Missing entries are a no-op.
func (s *PendingStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, domainauth.NormalizeEmail(email))
	return nil
}
