package agentports

import "context"

// RateLimiter coordinates throughput against the generation backend.
type RateLimiter interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
