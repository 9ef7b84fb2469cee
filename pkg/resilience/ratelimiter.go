// Package resilience guards the parse and GPA entry points against
// request floods.
package resilience

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/WessleyAI/gradepoint/pkg/fn"
)

// DefaultIdleTTL is how long an unused client bucket is kept.
const DefaultIdleTTL = 10 * time.Minute

// LimiterOpts configures a KeyedLimiter.
type LimiterOpts struct {
	// PerMinute is the sustained number of requests a key may make.
	PerMinute int
	// Burst is the bucket capacity. Zero means PerMinute.
	Burst int
	// IdleTTL evicts buckets not touched for this long. Zero means
	// DefaultIdleTTL.
	IdleTTL time.Duration
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// KeyedLimiter keeps one token bucket per key, typically a client address.
type KeyedLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	buckets map[string]*bucket
	now     func() time.Time
}

// NewKeyedLimiter creates a per-key limiter.
func NewKeyedLimiter(opts LimiterOpts) *KeyedLimiter {
	if opts.PerMinute <= 0 {
		opts.PerMinute = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = opts.PerMinute
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	return &KeyedLimiter{
		limit:   rate.Every(time.Minute / time.Duration(opts.PerMinute)),
		burst:   opts.Burst,
		ttl:     opts.IdleTTL,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow reports whether key may proceed now, consuming a token if so.
func (k *KeyedLimiter) Allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	k.sweep(now)
	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(k.limit, k.burst)}
		k.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Len is the number of tracked keys.
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

// sweep drops idle buckets. Must hold mu.
func (k *KeyedLimiter) sweep(now time.Time) {
	for key, b := range k.buckets {
		if now.Sub(b.seen) > k.ttl {
			delete(k.buckets, key)
		}
	}
}

// LimiterStageWait wraps an fn.Stage with a limiter that waits for a token
// or for ctx to end.
func LimiterStageWait[In, Out any](l *rate.Limiter, stage fn.Stage[In, Out]) fn.Stage[In, Out] {
	return func(ctx context.Context, in In) fn.Result[Out] {
		if err := l.Wait(ctx); err != nil {
			return fn.Err[Out](err)
		}
		return stage(ctx, in)
	}
}
