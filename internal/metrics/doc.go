// Package metrics counts translation events with Prometheus and serves them,
// together with a JSON progress snapshot, on an optional HTTP status server.
package metrics
