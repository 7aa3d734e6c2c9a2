package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/telephone/internal/document"
)

type testConfig struct {
	RepeatPasses   int      `json:"repeat_passes"`
	Workers        int      `json:"workers"`
	Languages      []string `json:"languages"`
	SourceLanguage string   `json:"source_language"`
}

func sampleRecord(t *testing.T) *Record {
	t.Helper()
	doc, err := document.Parse([]byte(`{"b":"Hello_fr","a":["World",1,{"x.y":"deep"}],"n":null}`))
	require.NoError(t, err)

	rec, err := NewRecord(doc, map[string]int{"b": 1, "a[0]": 0, `a[2].x\.y`: 2}, testConfig{
		RepeatPasses:   3,
		Workers:        10,
		Languages:      []string{"fr", "de"},
		SourceLanguage: "en",
	})
	require.NoError(t, err)
	return rec
}

func assertSameRecord(t *testing.T, want, got *Record) {
	t.Helper()
	wantDoc, err := want.Document.MarshalJSON()
	require.NoError(t, err)
	gotDoc, err := got.Document.MarshalJSON()
	require.NoError(t, err)

	assert.Equal(t, string(wantDoc), string(gotDoc))
	assert.Equal(t, want.Progress, got.Progress)
	assert.Equal(t, want.Done, got.Done)
	assert.Equal(t, want.Version, got.Version)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

	var cfg testConfig
	require.NoError(t, got.DecodeConfig(&cfg))
	assert.Equal(t, 3, cfg.RepeatPasses)
	assert.Equal(t, []string{"fr", "de"}, cfg.Languages)
}

func TestStores_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	sqlite, err := OpenSQLite(filepath.Join(dir, "db", "checkpoint.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	stores := map[string]Store{
		"json":   NewFileStore(filepath.Join(dir, "json"), "", nil),
		"lz4":    NewFileStore(filepath.Join(dir, "lz4"), "", NewLZ4Codec()),
		"sqlite": sqlite,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load()
			require.ErrorIs(t, err, ErrNoCheckpoint)

			rec := sampleRecord(t)
			require.NoError(t, store.Save(rec))

			// a second save replaces the first
			rec.Progress["b"] = 3
			rec.Done = []string{"b"}
			require.NoError(t, store.Save(rec))

			got, err := store.Load()
			require.NoError(t, err)
			assertSameRecord(t, rec, got)
			require.NoError(t, got.Validate(3, rec.Document))

			require.NoError(t, store.Clear())
			_, err = store.Load()
			assert.ErrorIs(t, err, ErrNoCheckpoint)
			assert.NoError(t, store.Clear(), "clearing twice is fine")
		})
	}
}

func TestFileStore_PathAndNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, filepath.Join(dir, "telephone-checkpoint.json"), NewFileStore(dir, "", nil).Path())

	store := NewFileStore(dir, "run", NewLZ4Codec())
	assert.Equal(t, filepath.Join(dir, "run.json.lz4"), store.Location())

	require.NoError(t, store.Save(sampleRecord(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "run.json.lz4", entries[0].Name())

	size, err := store.Size()
	require.NoError(t, err)
	assert.Positive(t, size)
}

func TestFileStore_RejectsInvalidContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{{{`},
		{"missing progress", `{"version":1,"document":{"a":"x"},"config":{"repeat_passes":1,"languages":["fr"],"source_language":"en"}}`},
		{"negative count", `{"version":1,"document":{"a":"x"},"progress":{"a":-1},"config":{"repeat_passes":1,"languages":["fr"],"source_language":"en"}}`},
		{"empty pool", `{"version":1,"document":{"a":"x"},"progress":{},"config":{"repeat_passes":1,"languages":[],"source_language":"en"}}`},
		{"null document", `{"version":1,"document":null,"progress":{},"config":{"repeat_passes":1,"languages":["fr"],"source_language":"en"}}`},
		{"done not a list", `{"version":1,"document":{"a":"x"},"progress":{"a":1},"done":"a","config":{"repeat_passes":1,"languages":["fr"],"source_language":"en"}}`},
		{"future version", `{"version":7,"document":{"a":"x"},"progress":{},"config":{"repeat_passes":1,"languages":["fr"],"source_language":"en"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewFileStore(dir, "", nil)
			require.NoError(t, os.WriteFile(store.Path(), []byte(tt.content), 0644))

			_, err := store.Load()
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestRecord_Validate(t *testing.T) {
	fresh, err := document.Parse([]byte(`{"b":"Hello","a":["World",1,{"x.y":"deep"}],"n":null}`))
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(r *Record)
		passes  int
		fresh   *document.Node
		wantErr bool
	}{
		{"valid", func(*Record) {}, 3, fresh, false},
		{"valid without source", func(*Record) {}, 3, nil, false},
		{"count above passes", func(r *Record) { r.Progress["b"] = 4 }, 3, nil, true},
		{"path to number", func(r *Record) { r.Progress["a[1]"] = 0 }, 3, nil, true},
		{"unknown path", func(r *Record) { r.Progress["zzz"] = 0 }, 3, nil, true},
		{"unescaped path", func(r *Record) { r.Progress["a[2].x.y"] = 0 }, 3, nil, true},
		{"missing document", func(r *Record) { r.Document = nil }, 3, nil, true},
		{"done leaf", func(r *Record) { r.Progress["b"] = 3; r.Done = []string{"b"} }, 3, fresh, false},
		{"done short of passes", func(r *Record) { r.Done = []string{"b"} }, 3, nil, true},
		{"done without progress", func(r *Record) { r.Done = []string{"zzz"} }, 3, nil, true},
		{"shape mismatch", func(r *Record) { r.Document.Members[1].Value.Items = r.Document.Members[1].Value.Items[:2] }, 3, fresh, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := sampleRecord(t)
			tt.mutate(rec)

			err := rec.Validate(tt.passes, tt.fresh)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecord_DecodeConfigError(t *testing.T) {
	rec := &Record{Config: []byte(`[1,2]`)}
	var cfg testConfig
	assert.ErrorIs(t, rec.DecodeConfig(&cfg), ErrInvalid)
}
