//go:build integration

package containers

import (
	"context"
	"fmt"
	"time"
)

// Retry calls fn until it succeeds, doubling the delay between attempts up
// to maxDelay. It returns the last error once attempts are exhausted.
func Retry(ctx context.Context, attempts int, delay, maxDelay time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w (last error: %w)", ctx.Err(), err)
		case <-time.After(delay):
		}
		delay = min(delay*2, maxDelay)
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
}
