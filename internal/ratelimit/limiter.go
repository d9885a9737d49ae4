// Package ratelimit guards the public verification endpoints with a
// fixed-window request limit keyed by client IP.
package ratelimit

import (
	"context"
	"time"
)

// Store counts requests per key within a window.
type Store interface {
	// Incr bumps the counter for key, starting the window on first hit,
	// and returns the count inside the current window.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Result reports one limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
}

// Limiter applies a per-minute budget.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

func NewLimiter(store Store, perMinute int) *Limiter {
	return &Limiter{
		store:  store,
		limit:  perMinute,
		window: time.Minute,
	}
}

// Check consumes one request from the key's budget.
func (l *Limiter) Check(ctx context.Context, key string) (*Result, error) {
	count, err := l.store.Incr(ctx, "ratelimit:"+key, l.window)
	if err != nil {
		return nil, err
	}
	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining,
	}, nil
}
