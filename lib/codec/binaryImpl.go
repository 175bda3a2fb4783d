package codec

import (
	"fmt"
	"math"
	"sort"

	"github.com/mount-tech/typedb/lib/value"
	"google.golang.org/protobuf/encoding/protowire"
)

// NewBinaryCodec creates a new codec for string -> value.Value mappings using a
// compact varint based binary format.
//
// Layout (all integers are protobuf varints):
//
//	snapshot := count (key value){count}
//	key      := len bytes
//	value    := kind payload
//	payload  := string: len bytes | int: zigzag | float: fixed64 (little endian)
//	          | map: count (key value){count} | list: count value{count}
//
// Keys are written in sorted order, so equal mappings encode to equal bytes.
func NewBinaryCodec() Codec[string, value.Value] {
	return &binaryCodecImpl{}
}

// binaryCodecImpl implements the Codec interface using a custom binary format
type binaryCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.Codec)
// --------------------------------------------------------------------------

func (c binaryCodecImpl) Encode(m map[string]value.Value) ([]byte, error) {
	b := make([]byte, 0, 16*len(m)+1)
	return appendEntries(b, m, 1)
}

func (c binaryCodecImpl) Decode(b []byte) (map[string]value.Value, error) {
	if len(b) == 0 {
		return map[string]value.Value{}, nil
	}

	r := &binaryReader{buf: b}
	m, err := r.entries(1)
	if err != nil {
		return nil, err
	}

	// a snapshot owns the whole input, anything left means corruption
	if len(r.buf) != 0 {
		return nil, fmt.Errorf("binary: %d trailing bytes after snapshot", len(r.buf))
	}
	return m, nil
}

func (c binaryCodecImpl) Name() string {
	return NameBinary
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// appendEntries writes count followed by the sorted key/value pairs
func appendEntries(b []byte, m map[string]value.Value, depth int) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b = protowire.AppendVarint(b, uint64(len(keys)))

	var err error
	for _, k := range keys {
		b = protowire.AppendString(b, k)
		if b, err = appendValue(b, m[k], depth); err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
	}
	return b, nil
}

func appendValue(b []byte, v value.Value, depth int) ([]byte, error) {
	if depth > value.MaxDepth {
		return nil, fmt.Errorf("value nested deeper than %d levels", value.MaxDepth)
	}

	switch v.Kind {
	case value.KindString:
		b = protowire.AppendVarint(b, uint64(v.Kind))
		return protowire.AppendString(b, v.Str), nil

	case value.KindInt:
		b = protowire.AppendVarint(b, uint64(v.Kind))
		return protowire.AppendVarint(b, protowire.EncodeZigZag(v.Int)), nil

	case value.KindFloat:
		b = protowire.AppendVarint(b, uint64(v.Kind))
		return protowire.AppendFixed64(b, math.Float64bits(v.Float)), nil

	case value.KindMap:
		b = protowire.AppendVarint(b, uint64(v.Kind))
		return appendEntries(b, v.Map, depth+1)

	case value.KindList:
		b = protowire.AppendVarint(b, uint64(v.Kind))
		b = protowire.AppendVarint(b, uint64(len(v.List)))
		var err error
		for i, item := range v.List {
			if b, err = appendValue(b, item, depth+1); err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
		}
		return b, nil

	default:
		return nil, fmt.Errorf("invalid value kind %d", v.Kind)
	}
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// binaryReader consumes a snapshot from the front of buf
type binaryReader struct {
	buf []byte
}

func (r *binaryReader) varint() (uint64, error) {
	v, n := protowire.ConsumeVarint(r.buf)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *binaryReader) str() (string, error) {
	v, n := protowire.ConsumeString(r.buf)
	if n < 0 {
		return "", protowire.ParseError(n)
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *binaryReader) fixed64() (uint64, error) {
	v, n := protowire.ConsumeFixed64(r.buf)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	r.buf = r.buf[n:]
	return v, nil
}

// count reads an element count. Every element takes at least one byte, so a
// count larger than the remaining input is corrupt and is rejected before
// anything is allocated for it.
func (r *binaryReader) count() (int, error) {
	n, err := r.varint()
	if err != nil {
		return 0, err
	}
	if n > uint64(len(r.buf)) {
		return 0, fmt.Errorf("binary: element count %d exceeds remaining %d bytes", n, len(r.buf))
	}
	return int(n), nil
}

func (r *binaryReader) entries(depth int) (map[string]value.Value, error) {
	n, err := r.count()
	if err != nil {
		return nil, err
	}

	m := make(map[string]value.Value, n)
	for i := 0; i < n; i++ {
		k, err := r.str()
		if err != nil {
			return nil, err
		}
		if _, dup := m[k]; dup {
			return nil, fmt.Errorf("binary: duplicate key %q", k)
		}
		v, err := r.value(depth)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		m[k] = v
	}
	return m, nil
}

func (r *binaryReader) value(depth int) (value.Value, error) {
	if depth > value.MaxDepth {
		return value.Value{}, fmt.Errorf("binary: value nested deeper than %d levels", value.MaxDepth)
	}

	kind, err := r.varint()
	if err != nil {
		return value.Value{}, err
	}
	if kind > uint64(value.KindList) {
		return value.Value{}, fmt.Errorf("binary: unknown value kind %d", kind)
	}

	switch value.Kind(kind) {
	case value.KindString:
		s, err := r.str()
		if err != nil {
			return value.Value{}, err
		}
		return value.String(s), nil

	case value.KindInt:
		u, err := r.varint()
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(protowire.DecodeZigZag(u)), nil

	case value.KindFloat:
		u, err := r.fixed64()
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(math.Float64frombits(u)), nil

	case value.KindMap:
		m, err := r.entries(depth + 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Map(m), nil

	case value.KindList:
		n, err := r.count()
		if err != nil {
			return value.Value{}, err
		}
		l := make([]value.Value, n)
		for i := range l {
			if l[i], err = r.value(depth + 1); err != nil {
				return value.Value{}, fmt.Errorf("list index %d: %w", i, err)
			}
		}
		return value.List(l...), nil

	default:
		return value.Value{}, fmt.Errorf("binary: unknown value kind %d", kind)
	}
}
