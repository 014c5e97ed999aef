package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered         uint64
	EmailTaken              uint64
	LoginSuccesses          uint64
	LoginFailures           uint64
	TokensMalformed         uint64
	TokensInvalidSignature  uint64
	TokensExpired           uint64
	RateLimited             uint64
	HashDurationCount       uint64
	HashDurationTotalNs     int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered        uint64
	emailTaken             uint64
	loginSuccesses         uint64
	loginFailures          uint64
	tokensMalformed        uint64
	tokensInvalidSignature uint64
	tokensExpired          uint64
	rateLimited            uint64
	hashDurationCount      uint64
	hashDurationTotalNs    int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:        atomic.LoadUint64(&m.usersRegistered),
		EmailTaken:             atomic.LoadUint64(&m.emailTaken),
		LoginSuccesses:         atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:          atomic.LoadUint64(&m.loginFailures),
		TokensMalformed:        atomic.LoadUint64(&m.tokensMalformed),
		TokensInvalidSignature: atomic.LoadUint64(&m.tokensInvalidSignature),
		TokensExpired:          atomic.LoadUint64(&m.tokensExpired),
		RateLimited:            atomic.LoadUint64(&m.rateLimited),
		HashDurationCount:      atomic.LoadUint64(&m.hashDurationCount),
		HashDurationTotalNs:    atomic.LoadInt64(&m.hashDurationTotalNs),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncEmailTaken increments the duplicate-email counter.
func (m *InMemoryRecorder) IncEmailTaken() {
	atomic.AddUint64(&m.emailTaken, 1)
}

// IncLoginSuccess increments the successful-login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed-login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncTokenRejected increments the rejection counter for the given kind.
func (m *InMemoryRecorder) IncTokenRejected(kind string) {
	switch kind {
	case TokenRejectedMalformed:
		atomic.AddUint64(&m.tokensMalformed, 1)
	case TokenRejectedInvalidSignature:
		atomic.AddUint64(&m.tokensInvalidSignature, 1)
	case TokenRejectedExpired:
		atomic.AddUint64(&m.tokensExpired, 1)
	}
}

// IncRateLimited increments the rate-limited counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

// ObserveHashDuration records a password-hash duration.
func (m *InMemoryRecorder) ObserveHashDuration(duration time.Duration) {
	atomic.AddUint64(&m.hashDurationCount, 1)
	atomic.AddInt64(&m.hashDurationTotalNs, duration.Nanoseconds())
}
