// Package retry repeats operations that fail for transient reasons.
//
// The server uses it while dialing its backends: Redis and MongoDB often
// come up after the API process when everything starts together, so the
// first connection attempts are expected to fail.
//
//	err := retry.Do(ctx, retry.Policy{Attempts: 5, Delay: time.Second}, func() error {
//	    c, err := connect()
//	    if err != nil {
//	        return retry.Transient(err)
//	    }
//	    client = c
//	    return nil
//	})
//
// Only errors marked with [Transient] are retried; anything else stops at
// once.
package retry

import (
	"context"
	"errors"
	"time"
)

// Defaults for [Policy] fields left zero.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	DefaultMaxDelay = 30 * time.Second
)

// Policy bounds how often and how long an operation is retried.
type Policy struct {
	// Attempts is the total number of calls, including the first.
	Attempts int
	// Delay is the wait after the first failure. It doubles after each
	// further failure up to MaxDelay.
	Delay    time.Duration
	MaxDelay time.Duration
	// OnRetry, if set, is called before each wait with the attempt that
	// just failed (starting at 1) and its error.
	OnRetry func(attempt int, err error)
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = DefaultAttempts
	}
	if p.Delay <= 0 {
		p.Delay = DefaultDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	return p
}

// transientError marks an error as worth retrying.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err, or any error it wraps, was marked with
// [Transient].
func IsTransient(err error) bool {
	return errors.As(err, new(*transientError))
}

// Do calls fn until it succeeds, returns an error not marked [Transient], or
// the policy's attempts run out. The last error is returned unwrapped from
// its transient marker. Cancelling ctx stops the wait between attempts and
// returns ctx.Err().
func Do(ctx context.Context, p Policy, fn func() error) error {
	p = p.withDefaults()
	delay := p.Delay

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsTransient(err) {
			return err
		}
		if attempt == p.Attempts {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(2*delay, p.MaxDelay)
	}

	var te *transientError
	if errors.As(lastErr, &te) {
		return te.err
	}
	return lastErr
}
