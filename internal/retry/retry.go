package retry

import (
	"context"
	"time"

	"github.com/joshua-takyi/eventhub/internal/apperr"
	"github.com/joshua-takyi/eventhub/internal/clock"
)

// Policy describes how many extra attempts an operation gets and how long to wait between them.
type Policy struct {
	MaxRetries int
	Delay      func(attempt int) time.Duration
	// ShouldRetry decides whether err is worth another attempt. Nil means apperr kind retryability.
	ShouldRetry func(err error) bool
	// Sleep is swapped out in tests. Nil means clock.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Constant returns a delay function that always waits d.
func Constant(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}

// Default is the remote API policy: 3 retries, fixed 1s apart, on rate-limit and server errors.
func Default() Policy {
	return Policy{MaxRetries: 3, Delay: Constant(time.Second)}
}

func (p Policy) retryable(err error) bool {
	if p.ShouldRetry != nil {
		return p.ShouldRetry(err)
	}
	return apperr.KindOf(err).Retryable()
}

// Do runs op until it succeeds, returns a non-retryable error, or the retry budget is spent.
// The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = clock.Sleep
	}
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= p.MaxRetries || !p.retryable(err) {
			return zero, err
		}
		var d time.Duration
		if p.Delay != nil {
			d = p.Delay(attempt)
		}
		if serr := sleep(ctx, d); serr != nil {
			return zero, serr
		}
	}
}
