package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultBasename is the checkpoint file name without extension
const DefaultBasename = "telephone-checkpoint"

// FileStore keeps the checkpoint in a single file
type FileStore struct {
	dir      string
	basename string
	codec    Codec
}

// NewFileStore creates a store for dir/basename+extension. An empty basename
// uses DefaultBasename and a nil codec uses JSON.
func NewFileStore(dir, basename string, codec Codec) *FileStore {
	if basename == "" {
		basename = DefaultBasename
	}
	if codec == nil {
		codec = NewJSONCodec()
	}
	return &FileStore{dir: dir, basename: basename, codec: codec}
}

// Path returns the checkpoint file path
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, s.basename+s.codec.Extension())
}

// Location implements Store
func (s *FileStore) Location() string {
	return s.Path()
}

// Save writes rec to a temporary file and renames it over the checkpoint,
// so a crash mid-write never leaves a truncated checkpoint behind
func (s *FileStore) Save(rec *Record) error {
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			return fmt.Errorf("create checkpoint directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(s.dir, s.basename+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create checkpoint file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.codec.Encode(tmp, rec); err != nil {
		tmp.Close()
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}

// Load implements Store
func (s *FileStore) Load() (*Record, error) {
	f, err := os.Open(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoCheckpoint
	}
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()

	var raw json.RawMessage
	if err := s.codec.Decode(f, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return decodeRecord(raw)
}

// Clear implements Store
func (s *FileStore) Clear() error {
	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

// Size returns the size of the checkpoint file in bytes
func (s *FileStore) Size() (int64, error) {
	info, err := os.Stat(s.Path())
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
