package translation

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"codeberg.org/snonux/telephone/internal/testutil"
)

func TestNormalizeLanguages(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []string
		wantErr bool
	}{
		{"trims and dedupes", []string{" fr", "de ", "fr", ""}, []string{"fr", "de"}, false},
		{"keeps region tags", []string{"zh-CN", "pt-BR"}, []string{"zh-CN", "pt-BR"}, false},
		{"rejects garbage", []string{"fr", "not a language!"}, nil, true},
		{"rejects empty pool", []string{" ", ""}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeLanguages(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeLanguages() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeLanguages() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultLanguages_AreValid(t *testing.T) {
	langs := DefaultLanguages()
	got, err := NormalizeLanguages(langs)
	if err != nil {
		t.Fatalf("built-in languages failed validation: %v", err)
	}
	if len(got) != len(langs) {
		t.Errorf("built-in languages contain duplicates: %d vs %d", len(got), len(langs))
	}

	langs[0] = "changed"
	if DefaultLanguages()[0] == "changed" {
		t.Error("DefaultLanguages returned shared slice")
	}
}

func TestReadLanguageFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     []string
	}{
		{"yaml list", "langs.yaml", "- fr\n- de\n", []string{"fr", "de"}},
		{"yaml key", "langs.yml", "languages:\n  - ja\n  - ko\n", []string{"ja", "ko"}},
		{"plain lines", "langs.txt", "fr\n# comment\n\nde # german\r\nit", []string{"fr", "de", "it"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.filename)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}

			got, err := ReadLanguageFile(path)
			if err != nil {
				t.Fatalf("ReadLanguageFile() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadLanguageFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadLanguageFile_FileNotFound(t *testing.T) {
	_, err := ReadLanguageFile("/nonexistent/langs.txt")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadPool(t *testing.T) {
	stub := &testutil.StubTranslator{Languages: []string{"en", "fr", "de"}}

	path := filepath.Join(t.TempDir(), "langs.txt")
	if err := os.WriteFile(path, []byte("ja\nko\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    PoolOptions
		want    []string
		wantErr bool
	}{
		{"from translator drops source", PoolOptions{Source: PoolFromTranslator, SourceLanguage: "en"}, []string{"fr", "de"}, false},
		{"default source is translator", PoolOptions{}, []string{"en", "fr", "de"}, false},
		{"from file", PoolOptions{Source: PoolFromFile, File: path}, []string{"ja", "ko"}, false},
		{"from list", PoolOptions{Source: PoolFromList, List: []string{"es", "it"}}, []string{"es", "it"}, false},
		{"source kept when alone", PoolOptions{Source: PoolFromList, List: []string{"en"}, SourceLanguage: "en"}, []string{"en"}, false},
		{"unknown source", PoolOptions{Source: "oracle"}, nil, true},
		{"empty list", PoolOptions{Source: PoolFromList}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadPool(context.Background(), stub, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadPool() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadPool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrintLanguages(t *testing.T) {
	stub := &testutil.StubTranslator{Languages: []string{"fr", "de", "en"}}

	var buf bytes.Buffer
	if err := PrintLanguages(context.Background(), stub, &buf); err != nil {
		t.Fatalf("PrintLanguages failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "Languages supported by stub (3):") {
		t.Errorf("Unexpected header: %q", out)
	}
	if strings.Index(out, "de") > strings.Index(out, "fr") {
		t.Error("Expected languages to be sorted")
	}

	if err := PrintLanguages(context.Background(), &testutil.StubTranslator{}, &buf); err == nil {
		t.Error("Expected error when listing fails")
	}
}
