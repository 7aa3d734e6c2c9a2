package translation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker guards a translator with a circuit breaker. While the breaker is
// open calls fail immediately with gobreaker.ErrOpenState, so callers that
// retry on failure back off without hitting the backend.
type Breaker struct {
	inner Translator
	cb    *gobreaker.CircuitBreaker
}

// NewBreaker wraps inner. The breaker opens after failures consecutive
// failures and half-opens again after cooldown.
func NewBreaker(inner Translator, failures uint32, cooldown time.Duration, logger *slog.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("translator circuit breaker", "translator", name, "from", from.String(), "to", to.String())
			}
		},
	}

	return &Breaker{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
}

// Translate implements Translator. Empty results count as failures.
func (b *Breaker) Translate(ctx context.Context, text, targetLang string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		s, err := b.inner.Translate(ctx, text, targetLang)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(s) == "" {
			return "", ErrEmptyResult
		}
		return s, nil
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// ListLanguages implements Translator
func (b *Breaker) ListLanguages(ctx context.Context) ([]string, error) {
	return b.inner.ListLanguages(ctx)
}

// Name implements Translator
func (b *Breaker) Name() string {
	return b.inner.Name()
}

// State returns the current breaker state
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
