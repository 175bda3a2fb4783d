package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// --------------------------------------------------------------------------
// Tagged JSON form (used by the JSON codec)
// --------------------------------------------------------------------------

// MarshalJSON encodes v as a single-key object naming its variant,
// e.g. {"int":1} or {"list":[{"string":"a"}]}.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(map[string]string{"string": v.Str})
	case KindInt:
		return []byte(`{"int":` + strconv.FormatInt(v.Int, 10) + `}`), nil
	case KindFloat:
		return json.Marshal(map[string]float64{"float": v.Float})
	case KindMap:
		m := v.Map
		if m == nil {
			m = map[string]Value{}
		}
		return json.Marshal(map[string]map[string]Value{"map": m})
	case KindList:
		l := v.List
		if l == nil {
			l = []Value{}
		}
		return json.Marshal(map[string][]Value{"list": l})
	default:
		return nil, fmt.Errorf("cannot marshal value of kind %s", v.Kind)
	}
}

// UnmarshalJSON decodes the tagged form written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return fmt.Errorf("tagged value must have exactly one key, got %d", len(tagged))
	}

	for tag, raw := range tagged {
		switch tag {
		case "string":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			*v = String(s)
		case "int":
			var i int64
			if err := json.Unmarshal(raw, &i); err != nil {
				return err
			}
			*v = Int(i)
		case "float":
			var f float64
			if err := json.Unmarshal(raw, &f); err != nil {
				return err
			}
			*v = Float(f)
		case "map":
			var m map[string]Value
			if err := json.Unmarshal(raw, &m); err != nil {
				return err
			}
			*v = Map(m)
		case "list":
			var l []Value
			if err := json.Unmarshal(raw, &l); err != nil {
				return err
			}
			*v = List(l...)
		default:
			return fmt.Errorf("unknown value tag %q", tag)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Plain JSON conversion (used by the command line tool)
// --------------------------------------------------------------------------

// ParseJSON converts an arbitrary JSON document into a Value. Objects become
// maps, arrays lists, integral numbers ints and all other numbers floats.
// Booleans and null have no variant and are rejected.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	if dec.More() {
		return Value{}, fmt.Errorf("unexpected data after JSON value")
	}
	return fromInterface(raw, 1)
}

func fromInterface(raw interface{}, depth int) (Value, error) {
	if depth > MaxDepth {
		return Value{}, fmt.Errorf("value nested deeper than %d levels", MaxDepth)
	}
	switch x := raw.(type) {
	case string:
		return String(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case map[string]interface{}:
		m := make(map[string]Value, len(x))
		for k, item := range x {
			val, err := fromInterface(item, depth+1)
			if err != nil {
				return Value{}, err
			}
			m[k] = val
		}
		return Map(m), nil
	case []interface{}:
		l := make([]Value, len(x))
		for i, item := range x {
			val, err := fromInterface(item, depth+1)
			if err != nil {
				return Value{}, err
			}
			l[i] = val
		}
		return List(l...), nil
	default:
		return Value{}, fmt.Errorf("unsupported JSON type %T", raw)
	}
}

// Interface converts v into plain Go values (string, int64, float64,
// map[string]interface{}, []interface{}) suitable for json.Marshal.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindMap:
		m := make(map[string]interface{}, len(v.Map))
		for k, item := range v.Map {
			m[k] = item.Interface()
		}
		return m
	case KindList:
		l := make([]interface{}, len(v.List))
		for i, item := range v.List {
			l[i] = item.Interface()
		}
		return l
	default:
		return nil
	}
}
