package adapters

import (
	"context"
	"sync"
	"time"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
)

// TokenBucket is a waiting token-bucket limiter. Unlike a fail-fast bucket,
// Acquire blocks until a token refills or the context is done, since a
// generation call is worth waiting for.
type TokenBucket struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	capacity   int
	refillRate time.Duration // interval between single-token refills
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewTokenBucket creates a limiter with the given per-key capacity and
// refill interval.
func NewTokenBucket(capacity int, refillRate time.Duration) *TokenBucket {
	return &TokenBucket{
		buckets:    make(map[string]*bucket),
		capacity:   capacity,
		refillRate: refillRate,
	}
}

// Acquire takes one token for the key, waiting for a refill when the bucket
// is empty. The release func returns the token early.
func (tb *TokenBucket) Acquire(ctx context.Context, key string) (func(), error) {
	for {
		if ok := tb.tryTake(key); ok {
			return func() { tb.putBack(key) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(tb.refillRate):
		}
	}
}

func (tb *TokenBucket) tryTake(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, lastRefill: time.Now()}
		tb.buckets[key] = b
	}

	if refills := int(time.Since(b.lastRefill) / tb.refillRate); refills > 0 {
		b.tokens = min(b.tokens+refills, tb.capacity)
		b.lastRefill = b.lastRefill.Add(time.Duration(refills) * tb.refillRate)
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

func (tb *TokenBucket) putBack(key string) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if b, ok := tb.buckets[key]; ok {
		b.tokens = min(b.tokens+1, tb.capacity)
	}
}

// NopLimiter never blocks.
type NopLimiter struct{}

func (NopLimiter) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

var (
	_ ports.RateLimiter = (*TokenBucket)(nil)
	_ ports.RateLimiter = NopLimiter{}
)
