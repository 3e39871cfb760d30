package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultLimit and DefaultWindow match the public API admission policy:
	// at most 20 requests per sliding minute, shared across all callers.
	DefaultLimit  = 20
	DefaultWindow = 60 * time.Second
)

// Limiter is a sliding-window admission gate. One instance guards the whole
// gateway; construct a fresh one per test for isolation.
type Limiter struct {
	mu         sync.Mutex
	limit      int
	window     time.Duration
	timestamps []time.Time
}

func New(limit int, window time.Duration) *Limiter {
	return &Limiter{limit: limit, window: window}
}

func NewDefault() *Limiter {
	return New(DefaultLimit, DefaultWindow)
}

// Allow reports whether a request arriving at now is admitted. Admitted
// requests are recorded; rejected ones are not, so a rejection never extends
// the window.
func (l *Limiter) Allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanup(now)
	if len(l.timestamps) >= l.limit {
		return false
	}
	l.timestamps = append(l.timestamps, now)
	return true
}

// Remaining returns how many requests the window still admits at now.
func (l *Limiter) Remaining(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanup(now)
	return l.limit - len(l.timestamps)
}

// cleanup drops timestamps that fell out of the trailing window.
// Caller must hold l.mu.
func (l *Limiter) cleanup(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for ; i < len(l.timestamps); i++ {
		if l.timestamps[i].After(cutoff) {
			break
		}
	}
	l.timestamps = l.timestamps[i:]
}
