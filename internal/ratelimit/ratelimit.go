// Package ratelimit provides fixed-window rate limiting for the auth
// endpoints. Each client key gets a window with a counter and a start
// time; the counter resets when the window elapses, and calls beyond the
// limit are rejected without reaching the auth service.
package ratelimit

import (
	"context"
	"time"
)

// Result contains the outcome of an admission check.
type Result struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter admits or rejects a call for the given client key.
// Implementations must support concurrent increment-and-check without
// losing updates.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}
