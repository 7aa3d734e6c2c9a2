package translation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Backend names
const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
	BackendShell  = "shell"
)

var (
	// ErrEmptyResult is returned when a backend answers with no text
	ErrEmptyResult = errors.New("empty translation")

	// ErrUnknownBackend is returned for an unsupported backend name
	ErrUnknownBackend = errors.New("unknown translator")
)

// Translator translates text into a target language
type Translator interface {
	// Translate translates text into targetLang
	Translate(ctx context.Context, text, targetLang string) (string, error)

	// ListLanguages returns the language identifiers the backend accepts
	ListLanguages(ctx context.Context) ([]string, error)

	// Name returns the backend name
	Name() string
}

// Config selects and configures a backend
type Config struct {
	Backend  string // "openai", "gemini" or "shell"
	Fallback string // optional secondary backend

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiKey     string
	GeminiModel   string
	ShellCommand  string // defaults to "trans"

	// Circuit breaker: trips after BreakerFailures consecutive failures
	// and stays open for BreakerCooldown. Zero failures disables it.
	BreakerFailures uint32
	BreakerCooldown time.Duration

	// Cache memoizes identical (text, language) requests
	Cache bool

	Logger *slog.Logger
}

// New creates the translator described by config
func New(ctx context.Context, config Config) (Translator, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	primary, err := newBackend(ctx, config.Backend, config, logger)
	if err != nil {
		return nil, err
	}

	if config.Fallback != "" && config.Fallback != config.Backend {
		fallback, err := newBackend(ctx, config.Fallback, config, logger)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		primary = WithFallback(primary, fallback, logger)
	}

	if config.Cache {
		primary = NewCached(primary)
	}
	return primary, nil
}

func newBackend(ctx context.Context, name string, config Config, logger *slog.Logger) (Translator, error) {
	var (
		t   Translator
		err error
	)

	switch name {
	case BackendOpenAI:
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		t = NewOpenAITranslator(config.OpenAIKey, config.OpenAIBaseURL, config.OpenAIModel)
	case BackendGemini:
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		t, err = NewGeminiTranslator(ctx, config.GeminiKey, config.GeminiModel)
		if err != nil {
			return nil, err
		}
	case BackendShell:
		t, err = NewShellTranslator(config.ShellCommand)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}

	if config.BreakerFailures > 0 {
		t = NewBreaker(t, config.BreakerFailures, config.BreakerCooldown, logger)
	}
	return t, nil
}
