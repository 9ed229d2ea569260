package localstore

import (
	"sync"
	"time"
)

// RateLimiter drops events that arrive within a fixed window of the last
// allowed event. It backs the save debounce: rapid snooze/restart bursts
// skip intermediate persistence, and the final state lands once the
// window lapses.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewRateLimiter creates a rate limiter with the given window.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval}
}

// Allow reports whether an event at the given instant passes the window,
// and records it as the new reference point when it does.
func (r *RateLimiter) Allow(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.last.IsZero() && now.Sub(r.last) < r.interval {
		return false
	}
	r.last = now
	return true
}

// Reset clears the window so the next event is allowed regardless of
// timing. Used when a drop must not happen, e.g. before teardown.
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = time.Time{}
}

// Interval returns the configured window.
func (r *RateLimiter) Interval() time.Duration {
	return r.interval
}
