package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// NewGOBCodec creates a new codec using Go's binary gob format.
// It works for any key and value types gob can encode.
func NewGOBCodec[K comparable, V any]() Codec[K, V] {
	return &gobCodecImpl[K, V]{}
}

// gobCodecImpl implements the Codec interface using gob encoding
type gobCodecImpl[K comparable, V any] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.Codec)
// --------------------------------------------------------------------------

func (g gobCodecImpl[K, V]) Encode(m map[K]V) ([]byte, error) {
	if err := validateValues(m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[K]V{}
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobCodecImpl[K, V]) Decode(b []byte) (map[K]V, error) {
	if len(b) == 0 {
		return map[K]V{}, nil
	}

	buf := bytes.NewBuffer(b)
	dec := gob.NewDecoder(buf)

	var m map[K]V
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if buf.Len() != 0 {
		return nil, fmt.Errorf("gob: %d trailing bytes after snapshot", buf.Len())
	}
	if err := validateValues(m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[K]V{}
	}
	return m, nil
}

func (g gobCodecImpl[K, V]) Name() string {
	return NameGOB
}
