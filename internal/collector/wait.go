package collector

import (
	"context"
	"time"
)

// WaitFunc suspends for d or until ctx is done, returning ctx.Err() in the
// latter case.
type WaitFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the default WaitFunc: a timed wait that honours
// cancellation.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
