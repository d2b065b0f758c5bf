package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joshua-takyi/eventhub/internal/apperr"
)

func noSleep(slept *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
}

func TestDoRetriesRetryableUpToBudget(t *testing.T) {
	var slept []time.Duration
	p := Policy{MaxRetries: 3, Delay: Constant(time.Second), Sleep: noSleep(&slept)}

	calls := 0
	_, err := Do(context.Background(), p, func(context.Context) (int, error) {
		calls++
		return 0, apperr.New(apperr.KindRateLimit, "slow down")
	})
	if !apperr.Is(err, apperr.KindRateLimit) {
		t.Fatalf("err = %v, want rate limit", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (1 + 3 retries)", calls)
	}
	if len(slept) != 3 || slept[0] != time.Second {
		t.Errorf("slept = %v, want three 1s waits", slept)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	var slept []time.Duration
	p := Policy{MaxRetries: 3, Delay: Constant(time.Second), Sleep: noSleep(&slept)}

	calls := 0
	_, err := Do(context.Background(), p, func(context.Context) (string, error) {
		calls++
		return "", apperr.New(apperr.KindAuth, "bad token")
	})
	if !apperr.Is(err, apperr.KindAuth) {
		t.Fatalf("err = %v, want auth", err)
	}
	if calls != 1 || len(slept) != 0 {
		t.Errorf("calls=%d slept=%v, want a single attempt without waiting", calls, slept)
	}
}

func TestDoReturnsValueAfterTransientFailure(t *testing.T) {
	var slept []time.Duration
	p := Policy{MaxRetries: 2, Delay: Constant(0), Sleep: noSleep(&slept)}

	calls := 0
	v, err := Do(context.Background(), p, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", apperr.New(apperr.KindUnavailable, "503")
		}
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Fatalf("got (%q, %v), want (ok, nil)", v, err)
	}
}

func TestDoHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := Policy{MaxRetries: 3, Delay: Constant(time.Hour)}

	_, err := Do(ctx, p, func(context.Context) (int, error) {
		return 0, apperr.New(apperr.KindUnavailable, "down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
