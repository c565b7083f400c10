package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/sptree/pkg/retry"
)

// Sentinel errors for caching operations.
var (
	// ErrBackend is returned when the cache backend cannot be reached.
	ErrBackend = errors.New("cache backend unavailable")

	// ErrCacheMiss is returned by helpers that treat a miss as an error.
	ErrCacheMiss = errors.New("cache miss")
)

// Retryable marks err so that [RetryWithBackoff] tries again.
func Retryable(err error) error {
	return retry.Transient(err)
}

// IsRetryable reports whether err was marked with [Retryable].
func IsRetryable(err error) bool {
	return retry.IsTransient(err)
}

// retryBaseDelay is the first backoff delay; tests shorten it.
var retryBaseDelay = 100 * time.Millisecond

// RetryWithBackoff retries fn up to 3 times with exponential backoff.
// Only errors wrapped with Retryable will trigger retries.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, retry.Policy{Attempts: 3, Delay: retryBaseDelay}, fn)
}
