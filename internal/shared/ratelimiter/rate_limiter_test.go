package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowLimiter_AllowsUpToLimit(t *testing.T) {
	t.Parallel()

	l := NewWindowLimiter(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		start := time.Now()
		require.NoError(t, l.Wait(ctx))
		assert.Less(t, time.Since(start), 50*time.Millisecond, "call %d should not block", i)
	}
}

func TestWindowLimiter_BlocksWhenExhausted(t *testing.T) {
	t.Parallel()

	l := NewWindowLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestWindowLimiter_ResetsAfterWindow(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewWindowLimiter(1, time.Minute)
	l.now = func() time.Time { return current }
	l.lastReset = current

	require.NoError(t, l.Wait(context.Background()))

	current = current.Add(2 * time.Minute)
	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWindowLimiter_ContextCancelled(t *testing.T) {
	t.Parallel()

	l := NewWindowLimiter(1, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Wait(ctx))
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}

func TestWindowLimiter_Disabled(t *testing.T) {
	t.Parallel()

	l := NewWindowLimiter(0, time.Hour)
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
}
