package backoff

import (
	"errors"
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2.0,
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := Retry(testConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryExhaustsBudget(t *testing.T) {
	sentinel := errors.New("permanent")
	attempts := 0
	err := Retry(testConfig(), func() error {
		attempts++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected the last error wrapped, got %v", err)
	}
	if attempts != 4 {
		t.Fatalf("expected initial try plus 3 retries, got %d", attempts)
	}
}

func TestRetryFirstTrySucceeds(t *testing.T) {
	attempts := 0
	if err := Retry(testConfig(), func() error { attempts++; return nil }); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}
