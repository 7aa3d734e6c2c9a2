package checkpoint

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"codeberg.org/snonux/telephone/internal/document"
)

// recordSchema describes the fields a resumable record must carry
const recordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "document", "progress", "config"],
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "created_at": {"type": "string"},
    "document": {"type": ["object", "array", "string", "number", "boolean"]},
    "progress": {
      "type": "object",
      "additionalProperties": {"type": "integer", "minimum": 0}
    },
    "done": {
      "type": "array",
      "items": {"type": "string"}
    },
    "config": {
      "type": "object",
      "required": ["repeat_passes", "languages", "source_language"],
      "properties": {
        "repeat_passes": {"type": "integer", "minimum": 0},
        "workers": {"type": "integer", "minimum": 0},
        "languages": {
          "type": "array",
          "minItems": 1,
          "items": {"type": "string", "minLength": 1}
        },
        "source_language": {"type": "string", "minLength": 1}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(recordSchema)

// ValidateSchema checks raw checkpoint JSON against the record schema
func ValidateSchema(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// decodeRecord validates raw against the schema and unmarshals it
func decodeRecord(data []byte) (*Record, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if rec.Version != RecordVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalid, rec.Version)
	}
	return &rec, nil
}

// Validate checks that the record can be resumed: every progress path must
// address a string leaf of the stored document and every count must lie in
// [0, repeatPasses]. Done leaves must have all passes recorded. When fresh
// is not nil the stored document must also have the same shape as fresh.
func (r *Record) Validate(repeatPasses int, fresh *document.Node) error {
	if r.Document == nil {
		return fmt.Errorf("%w: missing document", ErrInvalid)
	}

	leaves := document.LeafPaths(r.Document)
	for path, n := range r.Progress {
		if _, ok := leaves[path]; !ok {
			return fmt.Errorf("%w: progress path %q does not address a string leaf", ErrInvalid, path)
		}
		if n < 0 || n > repeatPasses {
			return fmt.Errorf("%w: progress %q is %d, outside [0, %d]", ErrInvalid, path, n, repeatPasses)
		}
	}

	for _, path := range r.Done {
		if n, ok := r.Progress[path]; !ok || n != repeatPasses {
			return fmt.Errorf("%w: leaf %q is marked done without %d passes", ErrInvalid, path, repeatPasses)
		}
	}

	if fresh != nil {
		if err := document.ShapeDiff(fresh, r.Document); err != nil {
			return fmt.Errorf("%w: document does not match source: %w", ErrInvalid, err)
		}
	}
	return nil
}
