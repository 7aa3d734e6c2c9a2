package source

import (
	"archive/zip"
	"fmt"
	"io"
)

// maxEntrySize bounds the extracted entry
const maxEntrySize = 64 << 20

// ExtractEntry returns the contents of the named entry of a zip archive
func ExtractEntry(archivePath, name string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var entry *zip.File
	for _, f := range r.File {
		if f.Name == name {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("%s not found in archive", name)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("%s is larger than %d bytes", name, maxEntrySize)
	}
	return data, nil
}
