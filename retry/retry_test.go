package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func testConfig(maxRetries int) Config {
	return Config{
		MaxRetries:   maxRetries,
		InitialDelay: 1 * time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Base:         2.0,
	}
}

func TestDo_Success(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), testConfig(3), SentinelClassifier, func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Do() returned error = %v, want nil", err)
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
}

func TestDo_TerminalError(t *testing.T) {
	attempts := 0
	terminal := errors.New("malformed request")

	err := Do(context.Background(), testConfig(3), SentinelClassifier, func(ctx context.Context) error {
		attempts++
		return terminal
	})

	if err != terminal {
		t.Errorf("Do() returned error = %v, want the original %v", err, terminal)
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
}

func TestDo_RetryableRecovers(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), testConfig(5), SentinelClassifier, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("call failed: %w", ErrConnection)
		}
		return nil
	})

	if err != nil {
		t.Errorf("Do() returned error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("Do() made %d attempts, want 3", attempts)
	}
}

func TestDo_ExhaustionAttemptCount(t *testing.T) {
	// maxRetries=2 must yield exactly 3 attempts: 1 initial + 2 retries.
	attempts := 0
	failure := fmt.Errorf("permanent outage: %w", ErrUpstream)

	err := Do(context.Background(), testConfig(2), SentinelClassifier, func(ctx context.Context) error {
		attempts++
		return failure
	})

	if attempts != 3 {
		t.Errorf("Do() made %d attempts, want 3", attempts)
	}
	if err != failure {
		t.Errorf("Do() returned %v, want the original error surfaced unwrapped", err)
	}
}

func TestDo_OriginalErrorNotWrapped(t *testing.T) {
	failure := fmt.Errorf("429 from server: %w", ErrRateLimited)

	err := Do(context.Background(), testConfig(1), SentinelClassifier, func(ctx context.Context) error {
		return failure
	})

	// Callers must not need to unwrap a retry-specific error type.
	if err != failure {
		t.Errorf("Do() returned %v (%T), want the exact original error", err, err)
	}
}

func TestDo_ContextCanceledDuringBackoff(t *testing.T) {
	cfg := Config{
		MaxRetries:   5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     10 * time.Second,
		Base:         2.0,
	}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, cfg, SentinelClassifier, func(ctx context.Context) error {
		attempts++
		return ErrUpstream
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() returned %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts before cancellation, want 1", attempts)
	}
}

func TestDelayFor(t *testing.T) {
	cfg := Config{
		InitialDelay: 1 * time.Second,
		MaxDelay:     60 * time.Second,
		Base:         2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{7, 60 * time.Second}, // capped: 2^6 = 64s > 60s
	}

	for _, tt := range tests {
		if got := delayFor(cfg, tt.attempt); got != tt.want {
			t.Errorf("delayFor(attempt=%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestSentinelClassifier(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"rate limited", fmt.Errorf("api: %w", ErrRateLimited), KindRateLimited},
		{"connection", ErrConnection, KindConnection},
		{"upstream", fmt.Errorf("status 502: %w", ErrUpstream), KindUpstream},
		{"unknown", errors.New("bad payload"), KindTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SentinelClassifier(tt.err); got != tt.want {
				t.Errorf("SentinelClassifier() = %v, want %v", got, tt.want)
			}
		})
	}
}
