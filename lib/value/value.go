package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// MaxDepth is the deepest nesting of Map/List values that encoders and
// decoders accept. The outermost value has depth 1.
const MaxDepth = 64

// Kind is the variant tag of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota // zero Value, cannot be stored
	KindString
	KindInt
	KindFloat
	KindMap
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// Value is a tagged union of the value types supported out of the box.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Map   map[string]Value
	List  []Value
}

// --------------------------------------------------------------------------
// Constructors
// --------------------------------------------------------------------------

func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func Int(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

func Float(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}

// Map creates a map value. A nil map is stored as an empty map.
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{Kind: KindMap, Map: m}
}

// List creates a list value.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindList, List: items}
}

// --------------------------------------------------------------------------
// Methods
// --------------------------------------------------------------------------

// IsValid reports whether v carries one of the known variants.
func (v Value) IsValid() bool {
	return v.Kind >= KindString && v.Kind <= KindList
}

// Clone returns a deep copy of v. Nested maps and lists are never shared
// between v and the result.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindMap:
		m := make(map[string]Value, len(v.Map))
		for k, item := range v.Map {
			m[k] = item.Clone()
		}
		return Value{Kind: KindMap, Map: m}
	case KindList:
		l := make([]Value, len(v.List))
		for i, item := range v.List {
			l[i] = item.Clone()
		}
		return Value{Kind: KindList, List: l}
	default:
		return v
	}
}

// Equal reports whether v and o hold the same variant with equal contents.
// A nil and an empty map (or list) are equal. Floats compare by value, so
// NaN is not equal to itself.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindInt:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindMap:
		if len(v.Map) != len(o.Map) {
			return false
		}
		for k, item := range v.Map {
			other, ok := o.Map[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}
		return true
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Depth returns the nesting depth of v (1 for scalars).
func (v Value) Depth() int {
	d := 0
	switch v.Kind {
	case KindMap:
		for _, item := range v.Map {
			d = max(d, item.Depth())
		}
	case KindList:
		for _, item := range v.List {
			d = max(d, item.Depth())
		}
	}
	return d + 1
}

// Validate checks that v and every nested value carry a known variant and
// that v is not nested deeper than MaxDepth.
func (v Value) Validate() error {
	return v.validate(1)
}

func (v Value) validate(depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("value nested deeper than %d levels", MaxDepth)
	}
	switch v.Kind {
	case KindString, KindInt, KindFloat:
		return nil
	case KindMap:
		for k, item := range v.Map {
			if err := item.validate(depth + 1); err != nil {
				return fmt.Errorf("map key %q: %w", k, err)
			}
		}
		return nil
	case KindList:
		for i, item := range v.List {
			if err := item.validate(depth + 1); err != nil {
				return fmt.Errorf("list index %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("invalid value kind %d", v.Kind)
	}
}

// String renders v in a compact, human readable form. Map keys are sorted.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.Kind {
	case KindString:
		sb.WriteString(strconv.Quote(v.Str))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.Float, 'g', -1, 64))
	case KindMap:
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteString(": ")
			v.Map[k].write(sb)
		}
		sb.WriteByte('}')
	case KindList:
		sb.WriteByte('[')
		for i, item := range v.List {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.write(sb)
		}
		sb.WriteByte(']')
	default:
		sb.WriteString("<invalid>")
	}
}

// AsInt returns the integer held by v, converting integral floats.
func (v Value) AsInt() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.Int, true
	case KindFloat:
		// float64(math.MaxInt64) is 2^63, which is already out of range
		if v.Float == math.Trunc(v.Float) && v.Float >= math.MinInt64 && v.Float < math.MaxInt64 {
			return int64(v.Float), true
		}
	}
	return 0, false
}
