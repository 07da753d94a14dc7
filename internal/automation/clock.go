package automation

import (
	"context"
	"time"
)

// Clock abstracts time so scheduling tests can run against a fake
// instead of the wall clock.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until the context is cancelled, in which
	// case it returns the context's error.
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SystemClock is the production clock.
var SystemClock Clock = systemClock{}
