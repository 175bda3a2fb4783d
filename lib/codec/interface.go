package codec

import (
	"fmt"

	"github.com/mount-tech/typedb/lib/value"
)

// Codec is the interface for all snapshot codecs.
// A codec turns a complete key-value mapping into one byte sequence and back.
type Codec[K comparable, V any] interface {
	// Encode serializes the whole mapping.
	// It returns the serialized byte array and an error if any.
	Encode(m map[K]V) ([]byte, error)
	// Decode deserializes a byte array produced by Encode.
	// A zero-length input yields an empty mapping. Malformed input returns an error.
	Decode(b []byte) (map[K]V, error)
	// Name returns a short identifier of the format (e.g. "gob").
	Name() string
}

// Names of the built-in codecs
const (
	NameGOB    = "gob"
	NameJSON   = "json"
	NameBinary = "binary"
)

// ForValues returns the named codec for string -> value.Value mappings,
// optionally wrapped with zstd compression.
func ForValues(name string, compress bool) (Codec[string, value.Value], error) {
	var c Codec[string, value.Value]
	switch name {
	case NameGOB:
		c = NewGOBCodec[string, value.Value]()
	case NameJSON:
		c = NewJSONCodec[string, value.Value]()
	case NameBinary:
		c = NewBinaryCodec()
	default:
		return nil, fmt.Errorf("invalid codec %s (expected one of: %s, %s, %s)", name, NameBinary, NameGOB, NameJSON)
	}

	if compress {
		return NewZstdCodec(c)
	}
	return c, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// validator is implemented by value types that can check themselves
// (e.g. value.Value checks its kind and nesting depth)
type validator interface {
	Validate() error
}

// validateValues runs Validate on every value that implements it
func validateValues[K comparable, V any](m map[K]V) error {
	for k, v := range m {
		if val, ok := any(v).(validator); ok {
			if err := val.Validate(); err != nil {
				return fmt.Errorf("key %v: %w", k, err)
			}
		}
	}
	return nil
}
