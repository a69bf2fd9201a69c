package upstream

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryPolicy configures exponential backoff with jitter. MaxRetries counts
// retries after the first attempt.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxJitter  time.Duration
}

// backoff returns BaseDelay * 2^attempt plus up to MaxJitter of random jitter.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BaseDelay << attempt
	if p.MaxJitter > 0 {
		d += rand.N(p.MaxJitter)
	}
	return d
}

// Retry runs fn until it succeeds, returns a non-retryable error, the retries
// are exhausted or ctx is done. The last error from fn is returned.
func Retry(ctx context.Context, p RetryPolicy, retryable func(error) bool, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil || !retryable(err) || attempt >= p.MaxRetries {
			return err
		}
		timer := time.NewTimer(p.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
