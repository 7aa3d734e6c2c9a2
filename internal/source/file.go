package source

import (
	"context"

	"codeberg.org/snonux/telephone/internal/document"
)

// File reads the document from a local JSON file
type File struct {
	Path string
}

// Load implements processor.Source
func (f File) Load(context.Context) (*document.Node, error) {
	return document.ReadFile(f.Path)
}

// Describe returns a human readable origin
func (f File) Describe() string {
	return f.Path
}
