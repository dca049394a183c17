// Package retry provides deterministic exponential backoff for outbound API calls.
package retry

import (
	"context"
	"errors"
	"math"
	"time"
)

// Config holds retry configuration.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration
	// Base is the exponential growth factor (must be > 1).
	Base float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     60 * time.Second,
		Base:         2.0,
	}
}

// Kind classifies a failure for retry purposes. The set is closed: anything
// not mapped to one of the retryable kinds is terminal.
type Kind int

const (
	// KindTerminal marks errors that must not be retried.
	KindTerminal Kind = iota
	// KindUpstream marks generic upstream-service failures (5xx and similar).
	KindUpstream
	// KindConnection marks transport-level failures.
	KindConnection
	// KindRateLimited marks rate-limit responses.
	KindRateLimited
)

// Classifier maps an error to its retry Kind.
type Classifier func(error) Kind

// retryable reports whether the classified kind allows another attempt.
func retryable(c Classifier, err error) bool {
	if c == nil {
		return false
	}
	return c(err) != KindTerminal
}

// Do invokes fn up to cfg.MaxRetries+1 times, sleeping
// min(MaxDelay, InitialDelay * Base^(attempt-1)) between attempts.
//
// The schedule is deterministic: no jitter is applied. On exhaustion or on a
// terminal error the original error from fn is returned as-is, never wrapped,
// so callers can inspect it without unwrapping retry-specific types.
func Do(ctx context.Context, cfg Config, classify Classifier, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxRetries+1; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(classify, err) {
			return err
		}
		if attempt == cfg.MaxRetries+1 {
			break
		}

		select {
		case <-time.After(delayFor(cfg, attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}

// delayFor computes the backoff before the retry following attempt n (1-based).
func delayFor(cfg Config, attempt int) time.Duration {
	d := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.Base, float64(attempt-1)))
	if d > cfg.MaxDelay || d <= 0 {
		d = cfg.MaxDelay
	}
	return d
}

// Sentinel errors shared by classifiers across the module.
var (
	// ErrUpstream indicates a generic upstream-service failure.
	ErrUpstream = errors.New("upstream service error")
	// ErrConnection indicates a transport-level failure.
	ErrConnection = errors.New("connection error")
	// ErrRateLimited indicates the caller was rate limited.
	ErrRateLimited = errors.New("rate limited")
)

// SentinelClassifier classifies the package's own sentinel errors. It is the
// default classifier for callers that wrap failures in the sentinels above.
func SentinelClassifier(err error) Kind {
	switch {
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrConnection):
		return KindConnection
	case errors.Is(err, ErrUpstream):
		return KindUpstream
	default:
		return KindTerminal
	}
}
