package translation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/telephone/internal/testutil"
)

func TestNewOpenAITranslator(t *testing.T) {
	translator := NewOpenAITranslator("test-api-key", "", "")

	if translator == nil {
		t.Fatal("NewOpenAITranslator returned nil")
	}

	if translator.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", translator.apiKey)
	}

	if translator.model != "gpt-4o-mini" {
		t.Errorf("Expected default model 'gpt-4o-mini', got '%s'", translator.model)
	}

	if translator.client == nil {
		t.Error("OpenAI client not initialized")
	}

	if translator.Name() != BackendOpenAI {
		t.Errorf("Expected name %q, got %q", BackendOpenAI, translator.Name())
	}
}

func TestOpenAITranslate_NoAPIKey(t *testing.T) {
	translator := NewOpenAITranslator("", "", "")

	_, err := translator.Translate(context.Background(), "Hello", "fr")
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}

	if err.Error() != "OpenAI API key not found" {
		t.Errorf("Expected 'OpenAI API key not found' error, got: %v", err)
	}
}

func TestOpenAITranslate_Integration(t *testing.T) {
	// Skip if no API key
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	translator := NewOpenAITranslator(apiKey, "", "")

	translation, err := translator.Translate(context.Background(), "Stone", "de")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if translation == "" {
		t.Error("Got empty translation")
	}

	t.Logf("Translation of 'Stone' to de: %s", translation)
}

func TestGeminiTranslate_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: GEMINI_API_KEY not set")
	}

	translator, err := NewGeminiTranslator(context.Background(), apiKey, "")
	if err != nil {
		t.Fatalf("NewGeminiTranslator failed: %v", err)
	}

	translation, err := translator.Translate(context.Background(), "Stone", "fr")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	t.Logf("Translation of 'Stone' to fr: %s", translation)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"unknown backend", Config{Backend: "babelfish"}, "unknown translator"},
		{"openai without key", Config{Backend: BackendOpenAI}, "OpenAI API key is required"},
		{"gemini without key", Config{Backend: BackendGemini}, "Gemini API key is required"},
		{"missing shell tool", Config{Backend: BackendShell, ShellCommand: "definitely-not-a-translator-binary"}, "not installed"},
		{"bad fallback", Config{Backend: BackendOpenAI, OpenAIKey: "k", Fallback: "babelfish"}, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.config)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	_, err := New(context.Background(), Config{Backend: "babelfish"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
}

func TestNew_Wrapping(t *testing.T) {
	tr, err := New(context.Background(), Config{
		Backend:         BackendOpenAI,
		OpenAIKey:       "k",
		BreakerFailures: 3,
		Cache:           true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cached, ok := tr.(*Cached)
	if !ok {
		t.Fatalf("Expected *Cached, got %T", tr)
	}
	if _, ok := cached.inner.(*Breaker); !ok {
		t.Errorf("Expected breaker inside cache, got %T", cached.inner)
	}
	if tr.Name() != BackendOpenAI {
		t.Errorf("Expected name %q, got %q", BackendOpenAI, tr.Name())
	}
}

// writeFakeTrans creates a translate-shell stand-in script
func writeFakeTrans(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}

	script := `#!/bin/sh
if [ "$1" = "-list-codes" ]; then
  printf 'en\nfr\n\nde\n'
  exit 0
fi
lang=$(echo "$3" | cut -c2-)
if [ "$4" = "silent" ]; then
  exit 0
fi
printf '%s-%s\n' "$4" "$lang"
`
	path := filepath.Join(t.TempDir(), "trans")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	return path
}

func TestShellTranslator(t *testing.T) {
	path := writeFakeTrans(t)

	tr, err := NewShellTranslator(path)
	if err != nil {
		t.Fatalf("NewShellTranslator failed: %v", err)
	}

	got, err := tr.Translate(context.Background(), "Stone", "fr")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Stone-fr" {
		t.Errorf("Translate() = %q, want %q", got, "Stone-fr")
	}

	_, err = tr.Translate(context.Background(), "silent", "fr")
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("Expected ErrEmptyResult, got %v", err)
	}

	_, err = tr.Translate(context.Background(), "", "fr")
	if err == nil {
		t.Error("Expected error for empty text")
	}

	langs, err := tr.ListLanguages(context.Background())
	if err != nil {
		t.Fatalf("ListLanguages failed: %v", err)
	}
	if strings.Join(langs, ",") != "en,fr,de" {
		t.Errorf("ListLanguages() = %v", langs)
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	stub := &testutil.StubTranslator{
		FailOn: func(text, lang string, call int) error { return testutil.ErrStubFailure },
	}
	b := NewBreaker(stub, 2, time.Hour, nil)

	for i := 0; i < 2; i++ {
		if _, err := b.Translate(context.Background(), "x", "fr"); !errors.Is(err, testutil.ErrStubFailure) {
			t.Fatalf("call %d: expected stub failure, got %v", i, err)
		}
	}

	if b.State() != gobreaker.StateOpen {
		t.Fatalf("Expected open breaker, got %v", b.State())
	}

	_, err := b.Translate(context.Background(), "x", "fr")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected ErrOpenState, got %v", err)
	}
	if len(stub.Calls()) != 2 {
		t.Errorf("Expected backend to be called twice, got %d", len(stub.Calls()))
	}
}

func TestBreaker_EmptyResultIsFailure(t *testing.T) {
	stub := &testutil.StubTranslator{
		EmptyOn: func(text, lang string, call int) bool { return true },
	}
	b := NewBreaker(stub, 5, time.Hour, nil)

	_, err := b.Translate(context.Background(), "x", "fr")
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("Expected ErrEmptyResult, got %v", err)
	}
}

func TestWithFallback(t *testing.T) {
	primary := &testutil.StubTranslator{
		FailOn: func(text, lang string, call int) error { return testutil.ErrStubFailure },
	}
	fallback := &testutil.StubTranslator{Languages: []string{"de"}}

	tr := WithFallback(primary, fallback, nil)

	got, err := tr.Translate(context.Background(), "Stone", "fr")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Stone_fr" {
		t.Errorf("Translate() = %q, want %q", got, "Stone_fr")
	}
	if len(primary.Calls()) != 1 || len(fallback.Calls()) != 1 {
		t.Errorf("Expected one call each, got primary=%d fallback=%d", len(primary.Calls()), len(fallback.Calls()))
	}

	langs, err := tr.ListLanguages(context.Background())
	if err != nil || len(langs) != 1 || langs[0] != "de" {
		t.Errorf("ListLanguages() = %v, %v", langs, err)
	}

	if tr.Name() != "stub (fallback: stub)" {
		t.Errorf("Unexpected name %q", tr.Name())
	}
}

func TestCached(t *testing.T) {
	stub := &testutil.StubTranslator{}
	tr := NewCached(stub)

	for i := 0; i < 3; i++ {
		got, err := tr.Translate(context.Background(), "Stone", "fr")
		if err != nil || got != "Stone_fr" {
			t.Fatalf("Translate() = %q, %v", got, err)
		}
	}
	if len(stub.Calls()) != 1 {
		t.Errorf("Expected a single backend call, got %d", len(stub.Calls()))
	}
	if tr.cache.Len() != 1 {
		t.Errorf("Expected one cache entry, got %d", tr.cache.Len())
	}

	if _, err := tr.Translate(context.Background(), "Stone", "de"); err != nil {
		t.Fatal(err)
	}
	if len(stub.Calls()) != 2 {
		t.Errorf("Expected a second backend call for a new language, got %d", len(stub.Calls()))
	}
}

func TestCache_Overwrite(t *testing.T) {
	cache := NewCache()

	if _, found := cache.Get("Stone", "fr"); found {
		t.Error("Expected not found in empty cache")
	}

	cache.Add("Stone", "fr", "Pierre")
	cache.Add("Stone", "fr", "Pierre (roche)")

	got, found := cache.Get("Stone", "fr")
	if !found || got != "Pierre (roche)" {
		t.Errorf("Expected 'Pierre (roche)', got '%s'", got)
	}
}
