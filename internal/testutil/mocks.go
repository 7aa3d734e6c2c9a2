package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrStubFailure is returned by StubTranslator for programmed failures
var ErrStubFailure = errors.New("stub translator failure")

// Call records one Translate invocation
type Call struct {
	Text string
	Lang string
}

// StubTranslator is a deterministic translator for tests. Translating to
// any language appends "_<lang>" to the text; translating to SourceLanguage
// strips the last "_..." suffix instead.
type StubTranslator struct {
	// SourceLanguage is the back-translation target, "en" when empty
	SourceLanguage string

	// Languages is returned by ListLanguages
	Languages []string

	// Delay simulates backend latency
	Delay time.Duration

	// FailOn returns a non-nil error to make a call fail. call is the
	// 1-based index of the call across the stub's lifetime.
	FailOn func(text, lang string, call int) error

	// EmptyOn makes a call answer with an empty string
	EmptyOn func(text, lang string, call int) bool

	// OnCall runs after a call is recorded and before it is answered
	OnCall func(text, lang string)

	mu    sync.Mutex
	calls []Call
}

// Translate implements translation.Translator
func (s *StubTranslator) Translate(ctx context.Context, text, lang string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Text: text, Lang: lang})
	n := len(s.calls)
	s.mu.Unlock()

	if s.OnCall != nil {
		s.OnCall(text, lang)
	}

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if s.FailOn != nil {
		if err := s.FailOn(text, lang, n); err != nil {
			return "", err
		}
	}
	if s.EmptyOn != nil && s.EmptyOn(text, lang, n) {
		return "", nil
	}

	if lang == s.source() {
		if i := strings.LastIndex(text, "_"); i >= 0 {
			return text[:i], nil
		}
		return text, nil
	}
	return text + "_" + lang, nil
}

// ListLanguages implements translation.Translator
func (s *StubTranslator) ListLanguages(context.Context) ([]string, error) {
	if len(s.Languages) == 0 {
		return nil, ErrStubFailure
	}
	return append([]string(nil), s.Languages...), nil
}

// Name implements translation.Translator
func (s *StubTranslator) Name() string {
	return "stub"
}

// Calls returns a copy of every recorded call
func (s *StubTranslator) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsFor returns recorded calls whose text starts with prefix
func (s *StubTranslator) CallsFor(prefix string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if strings.HasPrefix(c.Text, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// BackCalls counts calls that targeted the source language
func (s *StubTranslator) BackCalls() int {
	n := 0
	for _, c := range s.Calls() {
		if c.Lang == s.source() {
			n++
		}
	}
	return n
}

func (s *StubTranslator) source() string {
	if s.SourceLanguage == "" {
		return "en"
	}
	return s.SourceLanguage
}
