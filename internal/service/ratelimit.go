package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type emailLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter enforces a per-email budget on code requests using token
// buckets. Keys are normalized emails; entries idle past the window are
// pruned when a new key is added so the map stays bounded by active users.
type rateLimiter struct {
	mu      sync.Mutex
	entries map[string]*emailLimiter
	limit   rate.Limit
	burst   int
	window  time.Duration
}

// newRateLimiter allows up to requests per email within window.
func newRateLimiter(requests int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		entries: make(map[string]*emailLimiter),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		window:  window,
	}
}

// allow reports whether another code request for the email fits the budget.
func (rl *rateLimiter) allow(email string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[email]
	if !ok {
		rl.prune()
		e = &emailLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[email] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

// prune drops entries idle past the window. Caller holds mu.
func (rl *rateLimiter) prune() {
	cutoff := time.Now().Add(-rl.window)
	for email, e := range rl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(rl.entries, email)
		}
	}
}
