// Package retry wraps an upload attempt with exponential backoff bounded
// by a maximum retry count, built on github.com/cenkalti/backoff/v4.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config tunes the backoff schedule.
type Config struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration

	// NonRetriable, when set, classifies an error as terminal without
	// consuming the rest of the retry budget.
	NonRetriable func(error) bool
}

const (
	minInitialBackoff = 50 * time.Millisecond
	defaultMaxBackoff  = 30 * time.Second
)

// Func is a single upload attempt.
type Func func(ctx context.Context) error

// OnRetry is invoked after a failed attempt, before the next backoff sleep.
// attempt is zero-based (0 = the first retry, not the first attempt).
type OnRetry func(attempt int, err error)

// Do runs fn, retrying on error with exponential backoff until either fn
// succeeds, a NonRetriable error is returned, cfg.MaxRetries is exhausted,
// or ctx is cancelled. It performs at most cfg.MaxRetries+1 invocations of fn.
func Do(ctx context.Context, cfg Config, onRetry OnRetry, fn Func) error {
	initial := cfg.InitialBackoff
	if initial < minInitialBackoff {
		initial = minInitialBackoff
	}
	maxInterval := cfg.MaxBackoff
	if maxInterval <= 0 {
		maxInterval = defaultMaxBackoff
	}
	multiplier := cfg.BackoffMultiplier
	if multiplier <= 1 {
		multiplier = 2.0
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initial
	bo.Multiplier = multiplier
	bo.MaxInterval = maxInterval
	// No jitter: each sleep is exactly min(cap, initial × multiplier^attempt).
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0 // bounded by attempt count, not wall-clock elapsed time

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	bounded := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxRetries)), ctx)

	attempt := 0

	operation := func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if cfg.NonRetriable != nil && cfg.NonRetriable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, _ time.Duration) {
		if onRetry != nil {
			onRetry(attempt, err)
		}
		attempt++
	}

	return backoff.RetryNotify(operation, bounded, notify)
}
