package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerr "github.com/quiver-mcp/quiver/pkg/errors"
)

// fakeClock drives the limiter's notion of time in tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(maxRequests int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	l := New(maxRequests, window)
	l.now = clock.Now
	return l, clock
}

func TestLimiter_SlidingWindowBoundary(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(2, time.Second)

	// Two calls fit the window.
	require.NoError(t, l.Consume("k"))
	require.NoError(t, l.Consume("k"))

	// The third within the same window is rejected.
	err := l.Consume("k")
	require.Error(t, err)
	assert.True(t, qerr.IsRateLimitExceeded(err))
	assert.Contains(t, err.Error(), `"k"`)
	assert.Contains(t, err.Error(), "2 requests")

	// Still rejected just inside the window.
	clock.Advance(999 * time.Millisecond)
	require.Error(t, l.Consume("k"))

	// Once the first call ages out, a new one is admitted.
	clock.Advance(2 * time.Millisecond)
	require.NoError(t, l.Consume("k"))
}

func TestLimiter_RejectionDoesNotConsume(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(1, time.Second)

	require.NoError(t, l.Consume("k"))

	// Hammering a full window must not extend it: rejections don't append.
	for i := 0; i < 10; i++ {
		require.Error(t, l.Consume("k"))
		clock.Advance(50 * time.Millisecond)
	}

	// 10 * 50ms has passed plus a bit more; the single admitted call has
	// aged out regardless of the rejected attempts in between.
	clock.Advance(501 * time.Millisecond)
	require.NoError(t, l.Consume("k"))
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(1, time.Second)

	require.NoError(t, l.Consume("tool_a:default"))
	require.Error(t, l.Consume("tool_a:default"))

	// A different tool or cluster has its own bucket.
	require.NoError(t, l.Consume("tool_b:default"))
	require.NoError(t, l.Consume("tool_a:prod"))
}

func TestLimiter_Describe(t *testing.T) {
	t.Parallel()

	l := New(5, 30*time.Second)
	limits := l.Describe()

	assert.Equal(t, 5, limits.MaxRequests)
	assert.Equal(t, 30*time.Second, limits.Window)
}

func TestLimiter_Defaults(t *testing.T) {
	t.Parallel()

	l := New(0, 0)
	limits := l.Describe()

	assert.Equal(t, DefaultMaxRequests, limits.MaxRequests)
	assert.Equal(t, DefaultWindow, limits.Window)
}

func TestLimiter_ConcurrentAdmission(t *testing.T) {
	t.Parallel()

	const max = 10
	l, _ := newTestLimiter(max, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Consume("k"); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Concurrent callers must never jointly over-admit.
	assert.Equal(t, max, admitted)
}
