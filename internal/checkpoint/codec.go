package checkpoint

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Codec defines how a record is serialized
type Codec interface {
	// Encode writes v to w
	Encode(w io.Writer, v any) error
	// Decode reads v from r
	Decode(r io.Reader, v any) error
	// Extension returns the file extension, such as ".json"
	Extension() string
}

// JSONCodec encodes records as JSON
type JSONCodec struct {
	// Indent is the indentation string; empty means compact JSON
	Indent string
}

// NewJSONCodec creates a JSON codec with 2-space indentation
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: "  "}
}

// Encode implements Codec
func (c *JSONCodec) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if c.Indent != "" {
		enc.SetIndent("", c.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// Decode implements Codec
func (c *JSONCodec) Decode(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	return nil
}

// Extension implements Codec
func (c *JSONCodec) Extension() string {
	return ".json"
}

// LZ4Codec wraps compact JSON in an LZ4 frame
type LZ4Codec struct {
	json JSONCodec
}

// NewLZ4Codec creates an LZ4-compressed JSON codec
func NewLZ4Codec() *LZ4Codec {
	return &LZ4Codec{}
}

// Encode implements Codec
func (c *LZ4Codec) Encode(w io.Writer, v any) error {
	zw := lz4.NewWriter(w)
	if err := c.json.Encode(zw, v); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("lz4 close: %w", err)
	}
	return nil
}

// Decode implements Codec
func (c *LZ4Codec) Decode(r io.Reader, v any) error {
	return c.json.Decode(lz4.NewReader(r), v)
}

// Extension implements Codec
func (c *LZ4Codec) Extension() string {
	return ".json.lz4"
}
