package codec

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/mount-tech/typedb/lib/value"
)

// testCodecs is a map of codec name to factory function for string -> value.Value codecs
var testCodecs = map[string]func(t testing.TB) Codec[string, value.Value]{
	"GOB":    func(testing.TB) Codec[string, value.Value] { return NewGOBCodec[string, value.Value]() },
	"JSON":   func(testing.TB) Codec[string, value.Value] { return NewJSONCodec[string, value.Value]() },
	"Binary": func(testing.TB) Codec[string, value.Value] { return NewBinaryCodec() },
	"Binary+zstd": func(t testing.TB) Codec[string, value.Value] {
		c, err := NewZstdCodec(NewBinaryCodec())
		if err != nil {
			t.Fatalf("Failed to create zstd codec: %v", err)
		}
		return c
	},
	"GOB+zstd": func(t testing.TB) Codec[string, value.Value] {
		c, err := NewZstdCodec(NewGOBCodec[string, value.Value]())
		if err != nil {
			t.Fatalf("Failed to create zstd codec: %v", err)
		}
		return c
	},
}

func deepList(depth int) value.Value {
	v := value.Int(1)
	for i := 1; i < depth; i++ {
		v = value.List(v)
	}
	return v
}

// testMappings creates a set of mappings with different shapes
func testMappings() []map[string]value.Value {
	return []map[string]value.Value{
		// empty mapping
		{},

		// scalars
		{
			"s":   value.String("hello"),
			"i":   value.Int(-42),
			"f":   value.Float(3.25),
			"":    value.String(""),
			"max": value.Int(1<<63 - 1),
		},

		// nested containers
		{
			"user": value.Map(map[string]value.Value{
				"name": value.String("gopher"),
				"tags": value.List(value.String("a"), value.Int(1), value.Float(0.5)),
				"meta": value.Map(map[string]value.Value{"x": value.List()}),
			}),
			"empty-map":  value.Map(nil),
			"empty-list": value.List(),
		},

		// maximum nesting
		{
			"deep": deepList(value.MaxDepth),
		},

		// unicode and many keys
		func() map[string]value.Value {
			m := map[string]value.Value{"ключ": value.String("значение")}
			for i := 0; i < 500; i++ {
				m[fmt.Sprintf("key-%03d", i)] = value.Int(int64(i))
			}
			return m
		}(),
	}
}

func equalMappings(a, b map[string]value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		other, ok := b[k]
		if !ok || !v.Equal(other) {
			return false
		}
	}
	return true
}

// TestCodecRoundTrip tests that mappings can be encoded and decoded correctly
func TestCodecRoundTrip(t *testing.T) {
	mappings := testMappings()

	for name, factory := range testCodecs {
		t.Run(name, func(t *testing.T) {
			c := factory(t)

			for i, m := range mappings {
				data, err := c.Encode(m)
				if err != nil {
					t.Errorf("Failed to encode mapping %d: %v", i, err)
					continue
				}

				result, err := c.Decode(data)
				if err != nil {
					t.Errorf("Failed to decode mapping %d: %v", i, err)
					continue
				}

				if !equalMappings(m, result) {
					t.Errorf("Mapping %d doesn't match after round trip:\nOriginal: %v\nResult: %v", i, m, result)
				}
			}
		})
	}
}

// TestCodecEmptyInput tests that zero-length input decodes to an empty mapping
func TestCodecEmptyInput(t *testing.T) {
	for name, factory := range testCodecs {
		t.Run(name, func(t *testing.T) {
			for _, in := range [][]byte{nil, {}} {
				m, err := factory(t).Decode(in)
				if err != nil {
					t.Fatalf("Expected no error for empty input, got %v", err)
				}
				if m == nil || len(m) != 0 {
					t.Errorf("Expected an empty non-nil mapping, got %v", m)
				}
			}
		})
	}
}

// TestCodecMalformedInput tests that garbage and truncated snapshots are rejected
func TestCodecMalformedInput(t *testing.T) {
	sample := map[string]value.Value{
		"a": value.String("some reasonably long string value"),
		"b": value.List(value.Int(1), value.Int(2), value.Int(3)),
	}

	for name, factory := range testCodecs {
		t.Run(name, func(t *testing.T) {
			c := factory(t)

			garbage := [][]byte{
				[]byte("this is definitely not a snapshot"),
				bytes.Repeat([]byte{0xff}, 64),
			}
			if name == "JSON" {
				garbage = append(garbage, []byte("null"), []byte(" null\n"), []byte("[]"), []byte(`"a"`))
			}
			for i, in := range garbage {
				if _, err := c.Decode(in); err == nil {
					t.Errorf("Expected error for garbage input %d", i)
				}
			}

			data, err := c.Encode(sample)
			if err != nil {
				t.Fatalf("Failed to encode: %v", err)
			}
			if _, err := c.Decode(data[:len(data)/2]); err == nil {
				t.Errorf("Expected error for truncated snapshot")
			}
		})
	}
}

// TestCodecTrailingBytes tests that data after a complete snapshot is rejected
func TestCodecTrailingBytes(t *testing.T) {
	sample := map[string]value.Value{"a": value.Int(1)}

	for _, name := range []string{"GOB", "JSON", "Binary"} {
		t.Run(name, func(t *testing.T) {
			c := testCodecs[name](t)
			data, err := c.Encode(sample)
			if err != nil {
				t.Fatalf("Failed to encode: %v", err)
			}
			data = append(data, []byte("stale tail")...)
			if _, err := c.Decode(data); err == nil {
				t.Errorf("Expected error for trailing bytes")
			}
		})
	}
}

// TestCodecRejectsInvalidValues tests that invalid and too deep values fail to encode
func TestCodecRejectsInvalidValues(t *testing.T) {
	invalid := []map[string]value.Value{
		{"zero": {}},
		{"nested-zero": value.List(value.Int(1), value.Value{})},
		{"too-deep": deepList(value.MaxDepth + 1)},
	}

	for name, factory := range testCodecs {
		t.Run(name, func(t *testing.T) {
			c := factory(t)
			for i, m := range invalid {
				if _, err := c.Encode(m); err == nil {
					t.Errorf("Expected encode error for mapping %d", i)
				}
			}
		})
	}
}

// TestBinaryDepthLimitOnDecode tests that the binary decoder refuses hand-crafted deep input
func TestBinaryDepthLimitOnDecode(t *testing.T) {
	// one entry, key "k", then MaxDepth+1 nested single-element lists around an int
	b := []byte{1, 1, 'k'}
	for i := 0; i < value.MaxDepth; i++ {
		b = append(b, byte(value.KindList), 1)
	}
	b = append(b, byte(value.KindInt), 2)

	_, err := NewBinaryCodec().Decode(b)
	if err == nil || !strings.Contains(err.Error(), "nested deeper") {
		t.Errorf("Expected depth error, got %v", err)
	}
}

// TestBinaryDeterministic tests that equal mappings encode to equal bytes
func TestBinaryDeterministic(t *testing.T) {
	c := NewBinaryCodec()
	m := testMappings()[4]

	first, err := c.Encode(m)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := c.Encode(m)
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("Encoding is not deterministic")
		}
	}
}

// TestGenericCodecs tests the generic codecs with key and value types other than value.Value
func TestGenericCodecs(t *testing.T) {
	type point struct {
		X, Y int
	}

	ints := map[int]point{1: {1, 2}, -5: {0, 0}, 100: {-3, 7}}
	generic := map[string]Codec[int, point]{
		"GOB":  NewGOBCodec[int, point](),
		"JSON": NewJSONCodec[int, point](),
	}

	for name, c := range generic {
		t.Run(name, func(t *testing.T) {
			data, err := c.Encode(ints)
			if err != nil {
				t.Fatalf("Failed to encode: %v", err)
			}
			result, err := c.Decode(data)
			if err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if !reflect.DeepEqual(ints, result) {
				t.Errorf("Round trip mismatch:\nOriginal: %v\nResult: %v", ints, result)
			}
		})
	}
}

// TestShapeMismatch tests that a snapshot of one value type does not decode as another
func TestShapeMismatch(t *testing.T) {
	m := map[string]value.Value{"a": value.Map(map[string]value.Value{"b": value.Int(1)})}

	gobData, err := NewGOBCodec[string, value.Value]().Encode(m)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if _, err := NewGOBCodec[string, int]().Decode(gobData); err == nil {
		t.Errorf("GOB: expected error decoding into the wrong value type")
	}

	jsonData, err := NewJSONCodec[string, value.Value]().Encode(m)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if _, err := NewJSONCodec[string, int]().Decode(jsonData); err == nil {
		t.Errorf("JSON: expected error decoding into the wrong value type")
	}
}

func TestForValues(t *testing.T) {
	tests := []struct {
		name     string
		compress bool
		want     string
	}{
		{NameGOB, false, "gob"},
		{NameJSON, false, "json"},
		{NameBinary, false, "binary"},
		{NameBinary, true, "binary+zstd"},
	}
	for _, tt := range tests {
		c, err := ForValues(tt.name, tt.compress)
		if err != nil {
			t.Errorf("ForValues(%s, %v) failed: %v", tt.name, tt.compress, err)
			continue
		}
		if c.Name() != tt.want {
			t.Errorf("Expected name %s, got %s", tt.want, c.Name())
		}
	}

	if _, err := ForValues("xml", false); err == nil {
		t.Errorf("Expected error for unknown codec")
	}
}

// TestZstdCompresses tests that repetitive data gets smaller when compressed
func TestZstdCompresses(t *testing.T) {
	m := map[string]value.Value{}
	for i := 0; i < 200; i++ {
		m[fmt.Sprintf("key-%d", i)] = value.String(strings.Repeat("repetitive ", 20))
	}

	plain, err := NewBinaryCodec().Encode(m)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	compressed, err := testCodecs["Binary+zstd"](t).Encode(m)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if len(compressed) >= len(plain) {
		t.Errorf("Expected compressed size < %d, got %d", len(plain), len(compressed))
	}
}
