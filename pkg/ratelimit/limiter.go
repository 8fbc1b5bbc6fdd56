// Package ratelimit implements sliding-window admission control for tool
// invocations.
//
// The limiter keeps a log of call timestamps per key (typically
// "tool:cluster") and rejects a call when the trailing window already holds
// the configured maximum. It is a sliding-window log, not a token bucket:
// admission already granted is never refunded, even if the backend call that
// followed it failed or timed out.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	qerr "github.com/quiver-mcp/quiver/pkg/errors"
)

// Default limits applied when the configuration leaves them unset.
const (
	DefaultMaxRequests = 30
	DefaultWindow      = 60 * time.Second
)

// Limits describes the configured window for introspection by callers.
type Limits struct {
	MaxRequests int           `json:"maxRequests"`
	Window      time.Duration `json:"window"`
}

// Limiter bounds the call rate per key using a sliding window. All methods
// are safe for concurrent use; admission for a given key is linearizable.
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	buckets     map[string][]time.Time

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a limiter admitting at most maxRequests calls per key within
// the trailing window. Non-positive values fall back to the defaults.
func New(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		buckets:     make(map[string][]time.Time),
		now:         time.Now,
	}
}

// Consume admits one call for key, or fails with a rate-limit error without
// mutating the bucket. Entries older than the window are pruned lazily here,
// never eagerly.
func (l *Limiter) Consume(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.window)

	bucket := l.buckets[key]
	retained := bucket[:0]
	for _, ts := range bucket {
		// Entries exactly at the window boundary still count.
		if !ts.Before(windowStart) {
			retained = append(retained, ts)
		}
	}

	if len(retained) >= l.maxRequests {
		l.buckets[key] = retained
		return errRateLimited(key, l.maxRequests, l.window)
	}

	l.buckets[key] = append(retained, now)
	return nil
}

// Describe returns the configured window and limit. Read-only, no side
// effects.
func (l *Limiter) Describe() Limits {
	return Limits{
		MaxRequests: l.maxRequests,
		Window:      l.window,
	}
}

func errRateLimited(key string, maxRequests int, window time.Duration) error {
	return qerr.NewRateLimitExceededError(
		fmt.Sprintf("rate limit exceeded for %q: at most %d requests per %s", key, maxRequests, window))
}
