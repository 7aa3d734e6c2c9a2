package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"codeberg.org/snonux/telephone/internal/archive"
	"codeberg.org/snonux/telephone/internal/document"
)

// DefaultMetadataFile is the metadata file name inside the output directory
const DefaultMetadataFile = "pack.mcmeta"

// Options configures a Writer
type Options struct {
	Dir          string // output directory
	ResultPath   string // translated file, relative to Dir
	MetadataFile string // relative to Dir, DefaultMetadataFile when empty
	PackFormat   int
	Description  string

	// Archive moves an existing output directory aside first
	Archive bool
}

// metadata is the metadata file layout
type metadata struct {
	Pack struct {
		PackFormat  int    `json:"pack_format"`
		Description string `json:"description"`
	} `json:"pack"`
}

// Writer writes the translated document
type Writer struct {
	opts Options
	out  io.Writer
}

// NewWriter creates a writer; messages go to out, stdout when nil
func NewWriter(opts Options, out io.Writer) *Writer {
	if opts.MetadataFile == "" {
		opts.MetadataFile = DefaultMetadataFile
	}
	if out == nil {
		out = os.Stdout
	}
	return &Writer{opts: opts, out: out}
}

// ResultFile returns the absolute location of the translated file
func (w *Writer) ResultFile() string {
	return filepath.Join(w.opts.Dir, filepath.FromSlash(w.opts.ResultPath))
}

// Write implements processor.Sink. It returns the path of the translated
// file.
func (w *Writer) Write(doc *document.Node) (string, error) {
	if w.opts.ResultPath == "" {
		return "", fmt.Errorf("result path is required")
	}

	if w.opts.Archive {
		if err := w.archivePrevious(); err != nil {
			return "", err
		}
	}

	resultFile := w.ResultFile()
	if err := os.MkdirAll(filepath.Dir(resultFile), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := doc.Indent()
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(resultFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result: %w", err)
	}

	if err := w.writeMetadata(); err != nil {
		return "", err
	}
	return resultFile, nil
}

func (w *Writer) archivePrevious() error {
	entries, err := os.ReadDir(w.opts.Dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(entries) == 0) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read output directory: %w", err)
	}

	archived, err := archive.Dir(w.opts.Dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Previous output archived to: %s\n", archived)
	return nil
}

func (w *Writer) writeMetadata() error {
	var meta metadata
	meta.Pack.PackFormat = w.opts.PackFormat
	meta.Pack.Description = w.opts.Description

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(w.opts.Dir, filepath.FromSlash(w.opts.MetadataFile))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}
