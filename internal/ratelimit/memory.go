package ratelimit

import (
	"context"
	"sync"
	"time"
)

// maxTrackedKeys bounds the window map; stale entries are pruned once the
// map grows past this size.
const maxTrackedKeys = 5000

type window struct {
	count       int
	windowStart time.Time
}

// MemoryLimiter is an in-process fixed-window limiter. It serves
// single-replica deployments without Redis and is the limiter used in
// tests. State is a per-key window map guarded by a mutex.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	size    time.Duration
	windows map[string]*window
	now     func() time.Time
}

// NewMemory creates a MemoryLimiter admitting at most limit calls per
// window per client key.
func NewMemory(limit int, size time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = 10
	}
	if size <= 0 {
		size = time.Minute
	}

	return &MemoryLimiter{
		limit:   limit,
		size:    size,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow checks and updates the window for the given client key.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (*Result, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		w = &window{windowStart: now}
		l.windows[key] = w
		l.pruneLocked(now)
	}

	// Reset an elapsed window before counting this call.
	if now.Sub(w.windowStart) >= l.size {
		w.count = 0
		w.windowStart = now
	}

	w.count++

	resetAt := w.windowStart.Add(l.size)
	if w.count > l.limit {
		retryAfter := resetAt.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return &Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter,
		}, nil
	}

	return &Result{
		Allowed:   true,
		Remaining: int64(l.limit - w.count),
		ResetAt:   resetAt,
	}, nil
}

// pruneLocked evicts windows that have already elapsed. Caller holds the mutex.
func (l *MemoryLimiter) pruneLocked(now time.Time) {
	if len(l.windows) <= maxTrackedKeys {
		return
	}
	for key, w := range l.windows {
		if now.Sub(w.windowStart) >= l.size {
			delete(l.windows, key)
		}
	}
}

// Clear drops all window state. Registered as a shutdown hook.
func (l *MemoryLimiter) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string]*window)
	return nil
}
