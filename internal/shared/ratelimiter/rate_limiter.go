// Package ratelimiter throttles calls to metered external APIs.
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter blocks until the caller may issue the next call.
type Limiter interface {
	Wait(ctx context.Context) error
}

// WindowLimiter allows at most limit calls per fixed window. The window restarts when it
// elapses or after a caller has slept through it.
type WindowLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	count     int
	lastReset time.Time
	now       func() time.Time
}

var _ Limiter = (*WindowLimiter)(nil)

// NewWindowLimiter creates a limiter for limit calls per window. A non-positive limit
// disables throttling.
func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		limit:     limit,
		window:    window,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// Wait reserves a slot, sleeping until the next window when the current one is spent.
func (l *WindowLimiter) Wait(ctx context.Context) error {
	if l.limit <= 0 {
		return nil
	}

	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastReset) >= l.window {
		l.count = 0
		l.lastReset = now
	}
	l.count++
	if l.count <= l.limit {
		l.mu.Unlock()
		return nil
	}
	sleep := l.window - now.Sub(l.lastReset)
	l.count = 1
	l.lastReset = now.Add(sleep)
	l.mu.Unlock()

	if sleep <= 0 {
		return nil
	}
	slog.Info("rate limit reached, waiting", "limit", l.limit, "sleep", sleep)
	t := time.NewTimer(sleep)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
