// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Token rejection kinds recorded by the auth middleware.
const (
	TokenRejectedMalformed        = "malformed"
	TokenRejectedInvalidSignature = "invalid_signature"
	TokenRejectedExpired          = "expired"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Registration metrics
	IncUserRegistered()
	IncEmailTaken()

	// Login metrics
	IncLoginSuccess()
	IncLoginFailure()

	// Token validation metrics, by rejection kind. External responses stay
	// uniform; the distinction exists only here and in logs.
	IncTokenRejected(kind string)

	// Rate limiting metrics
	IncRateLimited()

	// Password hashing latency
	ObserveHashDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
