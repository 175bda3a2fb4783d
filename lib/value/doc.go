// Package value provides Value, the default value type of typedb stores.
//
// Value is a tagged union with five variants: String, Int (int64),
// Float (float64), Map (map[string]Value) and List ([]Value). Maps and lists
// may nest up to MaxDepth levels. It lets applications store common data
// without declaring their own value type; it is one ordinary implementation
// of the value capabilities a store needs (copyable through Clone,
// serializable by the codecs), not a special case inside the store.
//
// The zero Value has KindInvalid and is rejected by every codec.
//
// Usage:
//
//	v := value.Map(map[string]value.Value{
//	    "name": value.String("gopher"),
//	    "tags": value.List(value.String("a"), value.Int(2)),
//	})
//	c := v.Clone() // no shared maps or slices with v
//	v.Equal(c)     // true
package value
