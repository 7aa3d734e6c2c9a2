package translation

import (
	"context"
	"fmt"
	"log/slog"
)

// translatorWithFallback tries the primary translator first and the
// fallback on error
type translatorWithFallback struct {
	primary  Translator
	fallback Translator
	logger   *slog.Logger
}

// WithFallback creates a translator that falls back to secondary if primary fails
func WithFallback(primary, fallback Translator, logger *slog.Logger) Translator {
	return &translatorWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Translate tries the primary translator first, falls back to the secondary on error
func (t *translatorWithFallback) Translate(ctx context.Context, text, targetLang string) (string, error) {
	out, err := t.primary.Translate(ctx, text, targetLang)
	if err == nil {
		return out, nil
	}

	if t.logger != nil {
		t.logger.Debug("primary translator failed, using fallback",
			"primary", t.primary.Name(), "fallback", t.fallback.Name(), "err", err)
	}
	return t.fallback.Translate(ctx, text, targetLang)
}

// ListLanguages returns the primary's languages, or the fallback's if that fails
func (t *translatorWithFallback) ListLanguages(ctx context.Context) ([]string, error) {
	langs, err := t.primary.ListLanguages(ctx)
	if err == nil {
		return langs, nil
	}
	return t.fallback.ListLanguages(ctx)
}

// Name returns the translator name
func (t *translatorWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", t.primary.Name(), t.fallback.Name())
}
