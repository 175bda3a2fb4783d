package codec

import (
	"encoding/json"
	"errors"
)

// errNotMapping is returned when a non-empty json snapshot is not an object
var errNotMapping = errors.New("json: snapshot is not a mapping")

// NewJSONCodec creates a new codec using json encoding.
// Keys must be strings, integers or implement encoding.TextMarshaler.
func NewJSONCodec[K comparable, V any]() Codec[K, V] {
	return &jsonCodecImpl[K, V]{}
}

// jsonCodecImpl implements the Codec interface using json encoding
type jsonCodecImpl[K comparable, V any] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.Codec)
// --------------------------------------------------------------------------

func (j jsonCodecImpl[K, V]) Encode(m map[K]V) ([]byte, error) {
	if err := validateValues(m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[K]V{}
	}
	return json.Marshal(m)
}

func (j jsonCodecImpl[K, V]) Decode(b []byte) (map[K]V, error) {
	if len(b) == 0 {
		return map[K]V{}, nil
	}

	var m map[K]V
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errNotMapping
	}
	if err := validateValues(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (j jsonCodecImpl[K, V]) Name() string {
	return NameJSON
}
