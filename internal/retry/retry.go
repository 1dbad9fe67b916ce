// Package retry runs an operation a bounded number of times. It is used
// at startup only; the pipeline itself never retries.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/deusflow/newsalert/internal/logger"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // linear backoff: attempt * Delay
}

// Startup is the policy for connecting to the store when the process starts.
var Startup = Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}

func WithRetry(ctx context.Context, config Config, name string, fn func() error) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		if attempt == attempts {
			return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, err)
		}

		delay := config.Delay
		if config.Backoff {
			delay = time.Duration(attempt) * config.Delay
		}
		logger.Warn("retrying", "operation", name, "attempt", attempt, "max_attempts", attempts, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
