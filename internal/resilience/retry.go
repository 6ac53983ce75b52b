// Package resilience retries provider calls that fail for transient reasons.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Backoff controls how often and how patiently a call is retried.
type Backoff struct {
	// Attempts is the total number of tries. 1 disables retrying.
	Attempts int
	// Initial is the delay before the first retry; each further retry doubles it up to Max.
	Initial time.Duration
	Max     time.Duration
	// Jitter spreads each delay by up to this fraction in either direction.
	Jitter float64
}

// DefaultBackoff suits a rate-limited HTTP API.
func DefaultBackoff() Backoff {
	return Backoff{
		Attempts: 3,
		Initial:  300 * time.Millisecond,
		Max:      5 * time.Second,
		Jitter:   0.2,
	}
}

// Retry calls fn until it succeeds, returns a permanent error, or runs out of attempts.
// op names the call in retry logs. Cancellation of ctx stops retrying immediately.
func Retry[T any](ctx context.Context, b Backoff, op string, fn func(context.Context) (T, error)) (T, error) {
	if b.Attempts < 1 {
		b.Attempts = 1
	}

	var zero T
	var err error
	for attempt := 1; ; attempt++ {
		var v T
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil || !IsTransient(err) || attempt >= b.Attempts {
			return zero, err
		}

		delay := b.delay(attempt)
		zap.L().Warn("resilience: retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		case <-timer.C:
		}
	}
}

func (b Backoff) delay(attempt int) time.Duration {
	d := float64(b.Initial) * math.Pow(2, float64(attempt-1))
	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}
	if b.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * b.Jitter
	}
	if d < 0 {
		return 0
	}
	return time.Duration(d)
}
