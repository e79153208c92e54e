package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by callers that must not run more often
// than a configured rate, such as watcher-triggered rescans.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter allows r events per second with bursts of up to b. A
// non-positive r disables limiting.
func NewLimiter(r float64, b int) *Limiter {
	limit := rate.Limit(r)
	if r <= 0 {
		limit = rate.Inf
	}
	return &Limiter{inner: rate.NewLimiter(limit, max(b, 1))}
}

func (l *Limiter) Allow(n int) bool {
	return l.inner.AllowN(time.Now(), n)
}

// Wait blocks until n tokens are available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	return l.inner.WaitN(ctx, n)
}
