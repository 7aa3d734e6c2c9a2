package queue

import (
	"context"
	"fmt"
	"time"
)

// Retry policy names accepted by NewRetryPolicy
const (
	PolicyFixed       = "fixed"
	PolicyExponential = "exponential"
)

// maxBackoffFactor caps exponential growth at 16x the base delay
const maxBackoffFactor = 16

// RetryPolicy decides how long to wait before the next attempt. attempt is
// the number of attempts made so far (starting at 1). Returning false stops
// retrying.
type RetryPolicy interface {
	Next(attempt int) (time.Duration, bool)
}

// FixedDelay waits the same delay before every retry, forever
type FixedDelay struct {
	Delay time.Duration
}

// Next implements RetryPolicy
func (p FixedDelay) Next(int) (time.Duration, bool) {
	return p.Delay, true
}

// ExponentialBackoff doubles the delay on every attempt up to Max
type ExponentialBackoff struct {
	Base time.Duration
	Max  time.Duration
}

// Next implements RetryPolicy
func (p ExponentialBackoff) Next(attempt int) (time.Duration, bool) {
	if attempt < 1 {
		attempt = 1
	}
	d := p.Base
	for i := 1; i < attempt; i++ {
		if p.Max > 0 && d >= p.Max {
			break
		}
		d *= 2
	}
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	return d, true
}

// MaxAttempts stops the wrapped policy once Attempts attempts have been made
type MaxAttempts struct {
	Policy   RetryPolicy
	Attempts int
}

// Next implements RetryPolicy
func (p MaxAttempts) Next(attempt int) (time.Duration, bool) {
	if p.Attempts > 0 && attempt >= p.Attempts {
		return 0, false
	}
	return p.Policy.Next(attempt)
}

// NewRetryPolicy builds a policy by name. maxAttempts of 0 retries forever.
func NewRetryPolicy(name string, delay time.Duration, maxAttempts int) (RetryPolicy, error) {
	var policy RetryPolicy
	switch name {
	case "", PolicyFixed:
		policy = FixedDelay{Delay: delay}
	case PolicyExponential:
		policy = ExponentialBackoff{Base: delay, Max: delay * maxBackoffFactor}
	default:
		return nil, fmt.Errorf("unknown retry policy: %s", name)
	}

	if maxAttempts < 0 {
		return nil, fmt.Errorf("max attempts must not be negative")
	}
	if maxAttempts > 0 {
		policy = MaxAttempts{Policy: policy, Attempts: maxAttempts}
	}
	return policy, nil
}

// Sleep waits for d or until ctx is done. It reports whether the full delay
// elapsed without cancellation.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return ctx.Err() == nil
	case <-ctx.Done():
		return false
	}
}
