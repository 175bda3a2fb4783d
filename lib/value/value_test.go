package value

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func nested() Value {
	return Map(map[string]Value{
		"name":  String("gopher"),
		"age":   Int(13),
		"ratio": Float(0.75),
		"tags":  List(String("a"), Int(2), Float(-1.5)),
		"inner": Map(map[string]Value{
			"list": List(Map(map[string]Value{"deep": Int(-7)})),
		}),
	})
}

func deepList(depth int) Value {
	v := Int(1)
	for i := 1; i < depth; i++ {
		v = List(v)
	}
	return v
}

func TestCloneIsDeep(t *testing.T) {
	orig := nested()
	clone := orig.Clone()

	if !orig.Equal(clone) {
		t.Fatalf("Clone should equal original:\n%s\n%s", orig, clone)
	}

	clone.Map["name"] = String("changed")
	clone.Map["tags"].List[0] = String("changed")
	clone.Map["inner"].Map["list"].List[0].Map["deep"] = Int(0)

	if orig.Map["name"].Str != "gopher" {
		t.Errorf("Changing the clone's map changed the original")
	}
	if orig.Map["tags"].List[0].Str != "a" {
		t.Errorf("Changing the clone's list changed the original")
	}
	if orig.Map["inner"].Map["list"].List[0].Map["deep"].Int != -7 {
		t.Errorf("Changing a nested clone changed the original")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"same string", String("x"), String("x"), true},
		{"different string", String("x"), String("y"), false},
		{"int vs float", Int(1), Float(1), false},
		{"nil vs empty map", Value{Kind: KindMap}, Map(nil), true},
		{"nil vs empty list", Value{Kind: KindList}, List(), true},
		{"list order matters", List(Int(1), Int(2)), List(Int(2), Int(1)), false},
		{"list length", List(Int(1)), List(Int(1), Int(1)), false},
		{"map missing key", Map(map[string]Value{"a": Int(1)}), Map(map[string]Value{"b": Int(1)}), false},
		{"nested", nested(), nested(), true},
		{"nan", Float(math.NaN()), Float(math.NaN()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.equal)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := nested().Validate(); err != nil {
		t.Errorf("Expected nested value to be valid, got %v", err)
	}
	if err := deepList(MaxDepth).Validate(); err != nil {
		t.Errorf("Expected value at MaxDepth to be valid, got %v", err)
	}
	if err := deepList(MaxDepth + 1).Validate(); err == nil {
		t.Errorf("Expected value beyond MaxDepth to be invalid")
	}
	if err := (Value{}).Validate(); err == nil {
		t.Errorf("Expected zero value to be invalid")
	}
	bad := Map(map[string]Value{"k": List(Value{})})
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), `"k"`) {
		t.Errorf("Expected error naming the map key, got %v", err)
	}
}

func TestDepth(t *testing.T) {
	if d := Int(1).Depth(); d != 1 {
		t.Errorf("Expected depth 1, got %d", d)
	}
	if d := deepList(5).Depth(); d != 5 {
		t.Errorf("Expected depth 5, got %d", d)
	}
}

func TestString(t *testing.T) {
	v := Map(map[string]Value{
		"b": List(Int(1), Float(2.5)),
		"a": String("x"),
	})
	want := `{"a": "x", "b": [1, 2.5]}`
	if got := v.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestTaggedJSON(t *testing.T) {
	orig := nested()
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Value
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !orig.Equal(decoded) {
		t.Errorf("Round trip mismatch:\n%s\n%s", orig, decoded)
	}

	// large ints survive without float rounding
	big := Int(math.MaxInt64)
	data, _ = json.Marshal(big)
	if err := json.Unmarshal(data, &decoded); err != nil || decoded.Int != math.MaxInt64 {
		t.Errorf("Expected MaxInt64 to survive, got %v (%v)", decoded, err)
	}

	for _, bad := range []string{`{}`, `{"int":1,"float":2}`, `{"bool":true}`, `{"int":"x"}`, `[]`} {
		if err := json.Unmarshal([]byte(bad), &decoded); err == nil {
			t.Errorf("Expected error for %s", bad)
		}
	}

	if _, err := json.Marshal(Value{}); err == nil {
		t.Errorf("Expected error marshalling the zero value")
	}
}

func TestParseJSON(t *testing.T) {
	v, err := ParseJSON([]byte(`{"a": 1, "b": [2.5, "x"], "c": {"d": -3}}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	want := Map(map[string]Value{
		"a": Int(1),
		"b": List(Float(2.5), String("x")),
		"c": Map(map[string]Value{"d": Int(-3)}),
	})
	if !v.Equal(want) {
		t.Errorf("ParseJSON = %s, want %s", v, want)
	}

	for _, bad := range []string{`true`, `null`, `{"a": null}`, `1 2`, `{`} {
		if _, err := ParseJSON([]byte(bad)); err == nil {
			t.Errorf("Expected error for %s", bad)
		}
	}

	deep := strings.Repeat("[", MaxDepth+1) + strings.Repeat("]", MaxDepth+1)
	if _, err := ParseJSON([]byte(deep)); err == nil {
		t.Errorf("Expected error for input deeper than MaxDepth")
	}
}

func TestInterface(t *testing.T) {
	data, err := json.Marshal(nested().Interface())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	back, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if !back.Equal(nested()) {
		t.Errorf("Plain JSON round trip mismatch:\n%s\n%s", back, nested())
	}
}

func TestAsInt(t *testing.T) {
	if i, ok := Int(4).AsInt(); !ok || i != 4 {
		t.Errorf("Expected 4, got %d (%v)", i, ok)
	}
	if i, ok := Float(3).AsInt(); !ok || i != 3 {
		t.Errorf("Expected 3, got %d (%v)", i, ok)
	}
	if _, ok := Float(3.5).AsInt(); ok {
		t.Errorf("3.5 is not an int")
	}
	if _, ok := String("3").AsInt(); ok {
		t.Errorf("strings are not ints")
	}
	if i, ok := Float(-9223372036854775808).AsInt(); !ok || i != math.MinInt64 {
		t.Errorf("Expected MinInt64, got %d (%v)", i, ok)
	}
	for _, f := range []float64{1e20, -1e20, math.Exp2(63), math.Inf(1), math.NaN()} {
		if i, ok := Float(f).AsInt(); ok {
			t.Errorf("%v does not fit into an int64, got %d", f, i)
		}
	}
}
