package translation

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Language pool sources
const (
	PoolFromTranslator = "translator"
	PoolFromFile       = "file"
	PoolFromList       = "list"
)

// defaultLanguages is used by backends without a language catalog
var defaultLanguages = []string{
	"af", "am", "ar", "az", "be", "bg", "bn", "bs", "ca", "cs", "cy", "da",
	"de", "el", "en", "eo", "es", "et", "eu", "fa", "fi", "fr", "ga", "gl",
	"gu", "ha", "he", "hi", "hr", "ht", "hu", "hy", "id", "ig", "is", "it",
	"ja", "jv", "ka", "kk", "km", "kn", "ko", "ku", "ky", "la", "lb", "lo",
	"lt", "lv", "mg", "mi", "mk", "ml", "mn", "mr", "ms", "mt", "my", "ne",
	"nl", "no", "ny", "pa", "pl", "ps", "pt", "ro", "ru", "sd", "si", "sk",
	"sl", "sm", "sn", "so", "sq", "sr", "st", "su", "sv", "sw", "ta", "te",
	"tg", "th", "tl", "tr", "uk", "ur", "uz", "vi", "xh", "yi", "yo",
	"zh-CN", "zh-TW", "zu",
}

// DefaultLanguages returns a copy of the built-in language list
func DefaultLanguages() []string {
	return append([]string(nil), defaultLanguages...)
}

// NormalizeLanguages trims, validates and de-duplicates language tags while
// keeping their order and spelling
func NormalizeLanguages(langs []string) ([]string, error) {
	seen := make(map[string]bool, len(langs))
	var out []string

	for _, l := range langs {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		if _, err := language.Parse(l); err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", l, err)
		}
		seen[l] = true
		out = append(out, l)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("language pool is empty")
	}
	return out, nil
}

// languageFile is the YAML form of a language file
type languageFile struct {
	Languages []string `yaml:"languages"`
}

// ReadLanguageFile reads language codes from a file. YAML files (.yaml,
// .yml) hold either a list or a "languages" key; any other file holds one
// code per line, with # starting a comment.
func ReadLanguageFile(filename string) ([]string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read language file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		var list []string
		if err := yaml.Unmarshal(content, &list); err == nil {
			return list, nil
		}
		var doc languageFile
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse language file: %w", err)
		}
		return doc.Languages, nil
	}

	var langs []string
	for _, line := range strings.Split(string(content), "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			langs = append(langs, line)
		}
	}
	return langs, nil
}

// PoolOptions describes where the language pool comes from
type PoolOptions struct {
	Source         string   // PoolFromTranslator, PoolFromFile or PoolFromList
	File           string   // for PoolFromFile
	List           []string // for PoolFromList
	SourceLanguage string   // dropped from the pool if others remain
}

// LoadPool builds the validated language pool
func LoadPool(ctx context.Context, t Translator, opts PoolOptions) ([]string, error) {
	var (
		raw []string
		err error
	)

	switch opts.Source {
	case "", PoolFromTranslator:
		if t == nil {
			return nil, fmt.Errorf("no translator to list languages from")
		}
		raw, err = t.ListLanguages(ctx)
	case PoolFromFile:
		raw, err = ReadLanguageFile(opts.File)
	case PoolFromList:
		raw = opts.List
	default:
		return nil, fmt.Errorf("unknown language source: %s", opts.Source)
	}
	if err != nil {
		return nil, err
	}

	pool, err := NormalizeLanguages(raw)
	if err != nil {
		return nil, err
	}

	if opts.SourceLanguage != "" && len(pool) > 1 {
		filtered := make([]string, 0, len(pool))
		for _, l := range pool {
			if l != opts.SourceLanguage {
				filtered = append(filtered, l)
			}
		}
		pool = filtered
	}
	return pool, nil
}

// PrintLanguages writes the translator's languages to w, sorted
func PrintLanguages(ctx context.Context, t Translator, w io.Writer) error {
	langs, err := t.ListLanguages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list languages: %w", err)
	}
	sort.Strings(langs)

	fmt.Fprintf(w, "Languages supported by %s (%d):\n", t.Name(), len(langs))
	for _, l := range langs {
		fmt.Fprintf(w, "  %s\n", l)
	}
	return nil
}
