// Package ratelimit provides per-client token-bucket admission control.
// Each client id gets its own bucket; buckets start full, refill
// continuously, and are garbage collected when idle.
package ratelimit

import (
	"sync"
	"time"

	"github.com/fwojciec/doccache"
	"golang.org/x/time/rate"
)

// Defaults for the limiter configuration.
const (
	DefaultMaxTokens = 100
	DefaultInterval  = time.Minute
)

// Ensure Limiter implements doccache.ClientLimiter at compile time.
var _ doccache.ClientLimiter = (*Limiter)(nil)

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter admits or denies operations per client id using token buckets.
// A new client's bucket starts at maxTokens; tokensPerInterval tokens are
// added per interval, capped at maxTokens.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	maxTokens int
	limit     rate.Limit
	now       func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source. Useful for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// NewLimiter creates a Limiter allowing bursts of maxTokens with
// tokensPerInterval tokens restored per interval.
func NewLimiter(maxTokens, tokensPerInterval int, interval time.Duration, opts ...Option) *Limiter {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if tokensPerInterval <= 0 {
		tokensPerInterval = 1
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	l := &Limiter{
		buckets:   make(map[string]*bucket),
		maxTokens: maxTokens,
		limit:     rate.Limit(float64(tokensPerInterval) / interval.Seconds()),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check consumes one token from the client's bucket when available.
// Denials report the time until the next token is available, which is
// always positive.
func (l *Limiter) Check(clientID string) doccache.LimitResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[clientID]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.maxTokens)}
		l.buckets[clientID] = b
	}
	b.lastSeen = now

	rsv := b.lim.ReserveN(now, 1)
	if delay := rsv.DelayFrom(now); delay > 0 {
		rsv.CancelAt(now)
		return doccache.LimitResult{Allowed: false, Remaining: 0, RetryAfter: delay}
	}

	remaining := int(b.lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return doccache.LimitResult{Allowed: true, Remaining: remaining}
}

// Reset deletes the client's bucket outright; the next check starts from
// a full bucket again.
func (l *Limiter) Reset(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, clientID)
}

// Cleanup removes buckets idle for longer than maxAge and returns the
// number removed.
func (l *Limiter) Cleanup(maxAge time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	var removed int
	for id, b := range l.buckets {
		if now.Sub(b.lastSeen) > maxAge {
			delete(l.buckets, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
