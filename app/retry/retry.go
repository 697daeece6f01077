package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = time.Second
	DefaultMaxDelay     = 10 * time.Second
)

// Policy wraps an outbound call with bounded attempts and exponential backoff
// plus jitter. Retryable decides which errors are worth another attempt; a
// nil predicate retries everything. The last error is returned unchanged once
// attempts are exhausted.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Retryable    func(error) bool
}

func (p Policy) maxAttempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

// WithRetryable returns a copy of the policy using the given predicate.
func (p Policy) WithRetryable(retryable func(error) bool) Policy {
	p.Retryable = retryable
	return p
}

// Do runs op until it succeeds, a non-retryable error occurs, the attempt cap
// is reached, or ctx is done. Backoff sleeps honor ctx cancellation and never
// hold any transaction or connection open.
func (p Policy) Do(ctx context.Context, op func() error) error {
	initial := p.InitialDelay
	if initial <= 0 {
		initial = DefaultInitialDelay
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = maxDelay
	b.MaxElapsedTime = 0

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(
		wrapped,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.maxAttempts()-1)), ctx),
	)
}
