package testutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/telephone/internal/document"
)

// ParseDocument parses a JSON literal or fails the test
func ParseDocument(t testing.TB, src string) *document.Node {
	t.Helper()
	doc, err := document.Parse([]byte(src))
	if err != nil {
		t.Fatalf("invalid test document %q: %v", src, err)
	}
	return doc
}

// CreateTestFile writes content to path, creating parent directories
func CreateTestFile(t testing.TB, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// AssertFileExists reports an error when path is missing
func AssertFileExists(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

// AssertFileNotExists reports an error when path exists
func AssertFileNotExists(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected %s to be absent", path)
	}
}

// AssertFileContent compares the whole file with want
func AssertFileContent(t testing.TB, path string, want []byte) {
	t.Helper()
	if got := readFile(t, path); !bytes.Equal(got, want) {
		t.Errorf("%s:\n got: %q\nwant: %q", path, got, want)
	}
}

// AssertFileContains checks that the file holds substr
func AssertFileContains(t testing.TB, path, substr string) {
	t.Helper()
	if got := readFile(t, path); !strings.Contains(string(got), substr) {
		t.Errorf("%s does not contain %q", path, substr)
	}
}

func readFile(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

// CaptureOutput runs f with os.Stdout and os.Stderr redirected and returns
// what was written to each
func CaptureOutput(t testing.TB, f func()) (stdout, stderr string) {
	t.Helper()

	origOut, origErr := os.Stdout, os.Stderr
	defer func() { os.Stdout, os.Stderr = origOut, origErr }()

	outCh, outW := drain(t)
	errCh, errW := drain(t)
	os.Stdout, os.Stderr = outW, errW

	f()

	outW.Close()
	errW.Close()
	return <-outCh, <-errCh
}

// drain returns a pipe writer and a channel yielding everything written to it
func drain(t testing.TB) (<-chan string, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	ch := make(chan string, 1)
	go func() {
		defer r.Close()
		b, _ := io.ReadAll(r)
		ch <- string(b)
	}()
	return ch, w
}
