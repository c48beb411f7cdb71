package ratelimit

import (
	"sync"
	"time"
)

const (
	// Buckets untouched for this long are dropped so the map does not
	// grow with every client IP ever seen.
	idleTimeout   = 10 * time.Minute
	sweepInterval = time.Minute
)

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// Limiter is a per-key token bucket used to throttle analysis requests
// per client IP. Buckets are created lazily on first use and evicted
// after idleTimeout without activity.
type Limiter struct {
	mu        sync.Mutex
	m         map[string]*bucket
	lastSweep time.Time
}

func New() *Limiter {
	return &Limiter{m: make(map[string]*bucket), lastSweep: time.Now()}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweepLocked(now)
	}

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// sweepLocked drops buckets idle past idleTimeout. Caller holds l.mu.
func (l *Limiter) sweepLocked(now time.Time) {
	for key, b := range l.m {
		if now.Sub(b.last) > idleTimeout {
			delete(l.m, key)
		}
	}
	l.lastSweep = now
}
