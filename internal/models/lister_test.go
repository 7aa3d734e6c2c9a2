package models

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"
)

func TestNewLister(t *testing.T) {
	lister := NewLister("test-api-key", "")

	if lister == nil {
		t.Fatal("NewLister returned nil")
	}

	if lister.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", lister.apiKey)
	}

	if lister.client == nil {
		t.Error("OpenAI client not initialized")
	}
}

func TestTranslationModels_NoAPIKey(t *testing.T) {
	lister := NewLister("", "")

	_, _, err := lister.TranslationModels(context.Background())
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}

	expectedError := "OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .telephone.yaml"
	if err.Error() != expectedError {
		t.Errorf("Expected error '%s', got: %v", expectedError, err)
	}
}

func TestTranslationModels_Filters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[
			{"id":"gpt-4o-mini","object":"model"},
			{"id":"tts-1","object":"model"},
			{"id":"gpt-4o-mini-tts","object":"model"},
			{"id":"o3-mini","object":"model"},
			{"id":"dall-e-3","object":"model"},
			{"id":"gpt-4.1","object":"model"},
			{"id":"text-embedding-3-small","object":"model"}
		]}`))
	}))
	defer srv.Close()

	lister := NewLister("test-key", srv.URL+"/v1")
	chat, others, err := lister.TranslationModels(context.Background())
	if err != nil {
		t.Fatalf("TranslationModels failed: %v", err)
	}

	want := []string{"gpt-4.1", "gpt-4o-mini", "o3-mini"}
	if !reflect.DeepEqual(chat, want) {
		t.Errorf("TranslationModels() = %v, want %v", chat, want)
	}
	if others != 4 {
		t.Errorf("Expected 4 other models, got %d", others)
	}

	var buf bytes.Buffer
	if err := lister.PrintModels(context.Background(), &buf); err != nil {
		t.Fatalf("PrintModels failed: %v", err)
	}
	if !strings.Contains(buf.String(), "  o3-mini\n") || !strings.Contains(buf.String(), "4 other models") {
		t.Errorf("Unexpected output: %q", buf.String())
	}
}

func TestIsChatModel(t *testing.T) {
	tests := map[string]bool{
		"gpt-4o":                 true,
		"chatgpt-4o-latest":      true,
		"o1":                     true,
		"gpt-4o-realtime":        false,
		"gpt-4o-transcribe":      false,
		"omni-moderation-latest": false,
		"babbage-002":            false,
	}
	for id, want := range tests {
		if got := isChatModel(id); got != want {
			t.Errorf("isChatModel(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestTranslationModels_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	if err := NewLister(apiKey, "").PrintModels(context.Background(), &bytes.Buffer{}); err != nil {
		t.Errorf("PrintModels failed: %v", err)
	}
}
