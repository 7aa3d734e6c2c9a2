package processor

import (
	"fmt"
	"time"

	"codeberg.org/snonux/telephone/internal/queue"
	"codeberg.org/snonux/telephone/internal/translation"
)

// RunConfig is the part of the configuration that is fixed for a run and
// stored in its checkpoint. On resume the stored value replaces the one
// built from flags.
type RunConfig struct {
	RepeatPasses   int      `json:"repeat_passes"`
	Workers        int      `json:"workers"`
	StartStaggerMs int      `json:"start_stagger_ms"`
	RetryDelayMs   int      `json:"retry_delay_ms"`
	RetryPolicy    string   `json:"retry_policy"`
	RetryMax       int      `json:"retry_max"`
	Languages      []string `json:"languages"`
	SourceLanguage string   `json:"source_language"`
	Translator     string   `json:"translator"`
	Fallback       string   `json:"fallback_translator,omitempty"`
	Model          string   `json:"model,omitempty"`
}

// DefaultRunConfig returns the default configuration. Languages stay empty
// and are resolved from the language pool source.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		RepeatPasses:   20,
		Workers:        10,
		StartStaggerMs: 0,
		RetryDelayMs:   10000,
		RetryPolicy:    queue.PolicyFixed,
		SourceLanguage: "en",
		Translator:     translation.BackendOpenAI,
	}
}

// StartStagger returns the per-worker start delay
func (c RunConfig) StartStagger() time.Duration {
	return time.Duration(c.StartStaggerMs) * time.Millisecond
}

// RetryDelay returns the base delay between failed attempts
func (c RunConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// NewRetryPolicy builds the configured retry strategy
func (c RunConfig) NewRetryPolicy() (queue.RetryPolicy, error) {
	return queue.NewRetryPolicy(c.RetryPolicy, c.RetryDelay(), c.RetryMax)
}

// ValidateSettings checks everything but the language pool
func (c RunConfig) ValidateSettings() error {
	switch {
	case c.RepeatPasses < 0:
		return fmt.Errorf("repeat passes must not be negative: %d", c.RepeatPasses)
	case c.Workers < 0:
		return fmt.Errorf("workers must not be negative: %d", c.Workers)
	case c.StartStaggerMs < 0:
		return fmt.Errorf("start stagger must not be negative: %d", c.StartStaggerMs)
	case c.RetryDelayMs < 0:
		return fmt.Errorf("retry delay must not be negative: %d", c.RetryDelayMs)
	case c.SourceLanguage == "":
		return fmt.Errorf("source language is required")
	case c.Translator == "":
		return fmt.Errorf("translator is required")
	}
	if _, err := c.NewRetryPolicy(); err != nil {
		return err
	}
	return nil
}

// Validate checks the complete configuration including the language pool
func (c RunConfig) Validate() error {
	if err := c.ValidateSettings(); err != nil {
		return err
	}
	if _, err := translation.NormalizeLanguages(c.Languages); err != nil {
		return err
	}
	return nil
}
