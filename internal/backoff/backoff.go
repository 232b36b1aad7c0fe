// Package backoff retries transient failures with exponential delays. The
// data clients themselves make exactly one attempt per fetch; retrying is
// an edge concern and lives with the batch callers.
package backoff

import (
	"fmt"
	"math"
	"time"
)

// Config configures retry behavior.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultConfig returns sensible retry defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
	}
}

// Retry executes fn until it succeeds or the attempt budget runs out,
// sleeping an exponentially growing delay between attempts.
func Retry(config *Config, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(config.BaseDelay) *
				math.Pow(config.Multiplier, float64(attempt-1)))
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
			time.Sleep(delay)
		}

		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
