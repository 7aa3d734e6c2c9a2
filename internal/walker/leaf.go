package walker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"golang.org/x/sync/semaphore"

	"codeberg.org/snonux/telephone/internal/queue"
	"codeberg.org/snonux/telephone/internal/translation"
)

// ErrInterrupted is returned when cancellation stopped a leaf before it
// reached back-translation. The text returned alongside it is the text as
// of the last completed pass.
var ErrInterrupted = errors.New("translation interrupted")

// errNotStarted marks a translator call that never reached the backend
var errNotStarted = errors.New("call not started")

// LeafState is the position of a leaf in its translation cycle
type LeafState int

const (
	LeafPending LeafState = iota
	LeafTranslating
	LeafRetrying
	LeafBackTranslating
	LeafDone
	LeafInterrupted
)

func (s LeafState) String() string {
	switch s {
	case LeafPending:
		return "Pending"
	case LeafTranslating:
		return "Translating"
	case LeafRetrying:
		return "Retrying"
	case LeafBackTranslating:
		return "BackTranslating"
	case LeafDone:
		return "Done"
	case LeafInterrupted:
		return "Interrupted"
	default:
		return "Unknown"
	}
}

// Recorder receives leaf events, typically for metrics
type Recorder interface {
	PassCompleted(lang string)
	PassFailed(lang string)
	BackTranslated(ok bool)
	InFlight(delta int)
}

type nopRecorder struct{}

func (nopRecorder) PassCompleted(string) {}
func (nopRecorder) PassFailed(string)    {}
func (nopRecorder) BackTranslated(bool)  {}
func (nopRecorder) InFlight(int)         {}

// LeafConfig configures a LeafMachine
type LeafConfig struct {
	RepeatPasses   int
	Languages      []string
	SourceLanguage string
	Translator     translation.Translator
	Progress       *Progress

	// Retry paces failed passes. Nil retries immediately, forever.
	Retry queue.RetryPolicy

	// Limiter bounds concurrent translator calls. Nil is unbounded.
	Limiter *semaphore.Weighted

	// Intn draws the language index, math/rand/v2 when nil
	Intn func(n int) int

	Recorder Recorder
	Logger   *slog.Logger
}

// LeafMachine drives single leaves through their passes
type LeafMachine struct {
	cfg LeafConfig
}

// NewLeafMachine validates cfg and fills in defaults
func NewLeafMachine(cfg LeafConfig) (*LeafMachine, error) {
	if cfg.RepeatPasses < 0 {
		return nil, fmt.Errorf("repeat passes must not be negative: %d", cfg.RepeatPasses)
	}
	if len(cfg.Languages) == 0 {
		return nil, fmt.Errorf("language pool is empty")
	}
	if cfg.SourceLanguage == "" {
		return nil, fmt.Errorf("source language is required")
	}
	if cfg.Translator == nil {
		return nil, fmt.Errorf("translator is required")
	}
	if cfg.Progress == nil {
		cfg.Progress = NewProgress(nil)
	}
	if cfg.Retry == nil {
		cfg.Retry = queue.FixedDelay{}
	}
	if cfg.Intn == nil {
		cfg.Intn = rand.IntN
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LeafMachine{cfg: cfg}, nil
}

// Translate runs the remaining passes of the leaf at path and then
// back-translates it once. Passes start at the count recorded in the
// progress map. A leaf already marked done is returned as is. On
// cancellation it returns the current text together with ErrInterrupted. A
// pass that ran out of retry attempts returns the current text and the last
// translator error.
func (m *LeafMachine) Translate(ctx context.Context, path, text string) (string, error) {
	progress := m.cfg.Progress
	passes := m.cfg.RepeatPasses

	count, _ := progress.Get(path)
	count = max(0, min(count, passes))
	progress.Set(path, count)
	if count == passes && progress.State(path) == LeafDone {
		return text, nil
	}
	progress.setState(path, LeafPending)

	for count < passes {
		if ctx.Err() != nil {
			return m.interrupt(path, text)
		}

		for attempt := 1; ; attempt++ {
			state := LeafTranslating
			if attempt > 1 {
				state = LeafRetrying
			}
			progress.setState(path, state)

			lang := m.cfg.Languages[m.cfg.Intn(len(m.cfg.Languages))]
			out, err := m.call(ctx, text, lang)
			if err == nil {
				text = out
				count++
				progress.Set(path, count)
				m.cfg.Recorder.PassCompleted(lang)
				m.cfg.Logger.Debug("pass completed", "path", path, "pass", count, "of", passes, "lang", lang)
				break
			}

			if ctx.Err() != nil {
				return m.interrupt(path, text)
			}
			m.cfg.Recorder.PassFailed(lang)
			m.cfg.Logger.Warn("translation failed", "path", path, "lang", lang, "attempt", attempt, "err", err)

			delay, ok := m.cfg.Retry.Next(attempt)
			if !ok {
				return text, fmt.Errorf("%s: pass %d: giving up after %d attempts: %w", path, count+1, attempt, err)
			}
			if !queue.Sleep(ctx, delay) {
				return m.interrupt(path, text)
			}
		}
	}

	if ctx.Err() != nil {
		return m.interrupt(path, text)
	}

	progress.setState(path, LeafBackTranslating)
	out, err := m.call(ctx, text, m.cfg.SourceLanguage)
	switch {
	case err == nil:
		text = out
		m.cfg.Recorder.BackTranslated(true)
	case errors.Is(err, errNotStarted):
		return m.interrupt(path, text)
	default:
		m.cfg.Recorder.BackTranslated(false)
		m.cfg.Logger.Warn("back-translation failed, keeping last pass", "path", path, "err", err)
	}

	progress.setState(path, LeafDone)
	return text, nil
}

func (m *LeafMachine) interrupt(path, text string) (string, error) {
	m.cfg.Progress.setState(path, LeafInterrupted)
	return text, ErrInterrupted
}

// call performs one translator request. Once the request has started it runs
// to completion even if ctx is cancelled, so a started pass is never lost.
func (m *LeafMachine) call(ctx context.Context, text, lang string) (string, error) {
	if m.cfg.Limiter != nil {
		if err := m.cfg.Limiter.Acquire(ctx, 1); err != nil {
			return "", fmt.Errorf("%w: %w", errNotStarted, err)
		}
		defer m.cfg.Limiter.Release(1)
	}

	m.cfg.Recorder.InFlight(1)
	defer m.cfg.Recorder.InFlight(-1)

	out, err := m.cfg.Translator.Translate(context.WithoutCancel(ctx), text, lang)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", translation.ErrEmptyResult
	}
	return out, nil
}
