// Package ratelimit throttles the sustained rate of upload attempts.
//
// It is a thin wrapper over golang.org/x/time/rate, grounded on the same
// token-bucket pattern the corpus uses to protect a rate-limited upstream
// API client from bursty callers.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter caps sustained upload throughput. A nil *Limiter or one
// constructed with ratePerSecond<=0 is unlimited: Wait always returns nil
// immediately.
type Limiter struct {
	limiter *rate.Limiter
}

// New returns a Limiter allowing ratePerSecond sustained operations, with a
// burst equal to the rate (minimum 1). ratePerSecond<=0 disables limiting.
func New(ratePerSecond float64) *Limiter {
	if ratePerSecond <= 0 {
		return &Limiter{}
	}
	burst := int(ratePerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Wait blocks until a token is available or ctx is cancelled. It is a no-op
// on an unlimited Limiter.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
