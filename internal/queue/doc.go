// Package queue runs a task over a list of items with a bounded number of
// concurrent workers. Failed items are retried according to a RetryPolicy
// until they succeed or the context is cancelled, and results are returned
// in the same order as the items.
package queue
