package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Subdir is the directory, next to the archived one, that holds archives
const Subdir = "archive"

const timestampLayout = "20060102-150405"

// Dir moves dir to <parent>/archive/<name>-<timestamp> and returns the new
// path
func Dir(dir string) (string, error) {
	return DirAt(dir, time.Now())
}

// DirAt is Dir with an explicit timestamp. When the target already exists a
// counter is appended: <name>-<timestamp>-2, -3 and so on.
func DirAt(dir string, now time.Time) (string, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("directory does not exist: %s", dir)
	}
	if err != nil {
		return "", fmt.Errorf("failed to inspect %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}

	archiveDir := filepath.Join(filepath.Dir(dir), Subdir)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := filepath.Base(dir) + "-" + now.Format(timestampLayout)
	target := filepath.Join(archiveDir, base)
	for n := 2; exists(target); n++ {
		target = filepath.Join(archiveDir, fmt.Sprintf("%s-%d", base, n))
	}

	if err := os.Rename(dir, target); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", dir, err)
	}
	return target, nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
