package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"codeberg.org/snonux/telephone/internal/document"
)

// RecordVersion is the current checkpoint format version
const RecordVersion = 1

var (
	// ErrNoCheckpoint is returned by Load when no checkpoint exists
	ErrNoCheckpoint = errors.New("no checkpoint")

	// ErrInvalid is returned for checkpoints that cannot be resumed safely
	ErrInvalid = errors.New("invalid checkpoint")
)

// Record is the persisted state of an interrupted run
type Record struct {
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	Document  *document.Node `json:"document"`
	Progress  map[string]int `json:"progress"`

	// Done lists the leaves that were back-translated already
	Done   []string        `json:"done,omitempty"`
	Config json.RawMessage `json:"config"`
}

// NewRecord creates a record of the current format. config is marshalled
// as JSON.
func NewRecord(doc *document.Node, progress map[string]int, config any) (*Record, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	return &Record{
		Version:   RecordVersion,
		CreatedAt: time.Now().UTC(),
		Document:  doc,
		Progress:  progress,
		Config:    raw,
	}, nil
}

// DecodeConfig unmarshals the stored run configuration into v
func (r *Record) DecodeConfig(v any) error {
	if err := json.Unmarshal(r.Config, v); err != nil {
		return fmt.Errorf("%w: config: %w", ErrInvalid, err)
	}
	return nil
}

// Store saves, loads and clears a single checkpoint
type Store interface {
	// Save replaces the stored checkpoint with rec
	Save(rec *Record) error

	// Load returns the stored checkpoint after schema validation, or
	// ErrNoCheckpoint
	Load() (*Record, error)

	// Clear removes the stored checkpoint. Clearing a missing checkpoint
	// is not an error.
	Clear() error

	// Location describes where the checkpoint lives
	Location() string
}
