package apiclient

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles outbound requests. A nil Limiter, or one built with a
// non-positive rate, never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter allowing requestsPerSecond with a burst of one.
func NewLimiter(requestsPerSecond float64) *Limiter {
	if requestsPerSecond <= 0 {
		return &Limiter{}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1)}
}

// Wait blocks until a request may proceed.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

// Unlimited reports whether Wait never blocks.
func (l *Limiter) Unlimited() bool {
	return l == nil || l.limiter == nil
}
