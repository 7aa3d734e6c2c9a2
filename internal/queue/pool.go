package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrCancelled is returned when the context was cancelled before every item
// was processed
var ErrCancelled = errors.New("queue cancelled")

// errAbandoned marks an item dropped because of cancellation
var errAbandoned = errors.New("abandoned")

// Options configures a Run
type Options struct {
	// Workers is the number of concurrent workers. Zero starts one
	// goroutine per item.
	Workers int

	// StartStagger delays worker k by k*StartStagger before its first item
	StartStagger time.Duration

	// Retry decides the delay between attempts of a failing item. Nil
	// retries immediately, forever.
	Retry RetryPolicy

	// OnRetry is called after every failed attempt
	OnRetry func(index, attempt int, err error)
}

// Task processes a single item
type Task[T, R any] func(ctx context.Context, item T) (R, error)

// Run applies task to every item and returns the results positionally:
// results[i] belongs to items[i] regardless of completion order.
//
// Cancellation is observed before an item is claimed and before every retry.
// An attempt that is already running is never interrupted by Run. Slots of
// items that were not completed keep the zero value of R, and the returned
// error wraps ErrCancelled.
func Run[T, R any](ctx context.Context, items []T, task Task[T, R], opts Options) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	retry := opts.Retry
	if retry == nil {
		retry = FixedDelay{}
	}

	var (
		mu       sync.Mutex
		failures []error
		skipped  atomic.Bool
	)

	process := func(i int) {
		r, err := runItem(ctx, i, items[i], task, retry, opts.OnRetry)
		if err != nil {
			if errors.Is(err, errAbandoned) {
				skipped.Store(true)
				return
			}
			mu.Lock()
			failures = append(failures, err)
			mu.Unlock()
			return
		}
		// every index is owned by exactly one goroutine
		results[i] = r
	}

	var g errgroup.Group

	if opts.Workers <= 0 {
		for i := range items {
			g.Go(func() error {
				if ctx.Err() != nil {
					skipped.Store(true)
					return nil
				}
				process(i)
				return nil
			})
		}
	} else {
		var (
			cursor    atomic.Int64
			exhausted = make(chan struct{})
		)
		workers := min(opts.Workers, len(items))
		unclaimed := func() bool { return int(cursor.Load()) < len(items) }

		for k := 0; k < workers; k++ {
			g.Go(func() error {
				if !staggerSleep(ctx, exhausted, time.Duration(k)*opts.StartStagger) {
					if unclaimed() {
						skipped.Store(true)
					}
					return nil
				}
				for {
					if ctx.Err() != nil {
						if unclaimed() {
							skipped.Store(true)
						}
						return nil
					}
					i := int(cursor.Add(1) - 1)
					if i >= len(items) {
						return nil
					}
					if i == len(items)-1 {
						// wakes workers still waiting for their start
						close(exhausted)
					}
					process(i)
				}
			})
		}
	}

	_ = g.Wait()

	if skipped.Load() {
		return results, fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
	}
	return results, errors.Join(failures...)
}

// staggerSleep waits d before a worker starts. It returns early and true
// once every item has been claimed, and false when ctx is cancelled first.
func staggerSleep(ctx context.Context, exhausted <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return ctx.Err() == nil
	case <-exhausted:
		return true
	case <-ctx.Done():
		return false
	}
}

func runItem[T, R any](ctx context.Context, index int, item T, task Task[T, R], retry RetryPolicy, onRetry func(int, int, error)) (R, error) {
	var zero R
	for attempt := 1; ; attempt++ {
		r, err := task(ctx, item)
		if err == nil {
			return r, nil
		}
		if onRetry != nil {
			onRetry(index, attempt, err)
		}

		if ctx.Err() != nil {
			return zero, errAbandoned
		}
		delay, ok := retry.Next(attempt)
		if !ok {
			return zero, fmt.Errorf("item %d: giving up after %d attempts: %w", index, attempt, err)
		}
		if !Sleep(ctx, delay) {
			return zero, errAbandoned
		}
	}
}
