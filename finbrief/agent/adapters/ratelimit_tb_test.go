package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_AcquireWithinCapacity(t *testing.T) {
	tb := NewTokenBucket(2, time.Hour)

	release1, err := tb.Acquire(context.Background(), "generate")
	require.NoError(t, err)
	release2, err := tb.Acquire(context.Background(), "generate")
	require.NoError(t, err)

	release1()
	release2()

	// released tokens are immediately available again
	release3, err := tb.Acquire(context.Background(), "generate")
	require.NoError(t, err)
	release3()
}

func TestTokenBucket_KeysAreIndependent(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)

	_, err := tb.Acquire(context.Background(), "a")
	require.NoError(t, err)

	// exhausting "a" must not affect "b"
	_, err = tb.Acquire(context.Background(), "b")
	require.NoError(t, err)
}

func TestTokenBucket_BlocksUntilRefill(t *testing.T) {
	tb := NewTokenBucket(1, 20*time.Millisecond)

	_, err := tb.Acquire(context.Background(), "generate")
	require.NoError(t, err)

	start := time.Now()
	_, err = tb.Acquire(context.Background(), "generate")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestTokenBucket_AcquireHonorsContext(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)

	_, err := tb.Acquire(context.Background(), "generate")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = tb.Acquire(ctx, "generate")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNopLimiter(t *testing.T) {
	release, err := NopLimiter{}.Acquire(context.Background(), "anything")
	require.NoError(t, err)
	release()
}
