package kv

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mount-tech/typedb/lib/value"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw     string
		typ     string
		want    value.Value
		wantErr bool
	}{
		{"hello", "string", value.String("hello"), false},
		{"42", "", value.String("42"), false},
		{"42", "int", value.Int(42), false},
		{"-1.5", "float", value.Float(-1.5), false},
		{`{"a": [1, "b"]}`, "json", value.Map(map[string]value.Value{"a": value.List(value.Int(1), value.String("b"))}), false},
		{"4.2", "int", value.Value{}, true},
		{"abc", "float", value.Value{}, true},
		{"{", "json", value.Value{}, true},
		{"x", "bool", value.Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.raw, func(t *testing.T) {
			got, err := parseValue(tt.raw, tt.typ)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestIncrement(t *testing.T) {
	m := map[string]value.Value{
		"int":   value.Int(5),
		"float": value.Float(2),
		"text":  value.String("x"),
		"huge":  value.Float(1e20),
	}

	tests := []struct {
		key     string
		by      int64
		want    int64
		wantErr bool
	}{
		{"missing", 1, 1, false},
		{"int", 10, 15, false},
		{"float", -3, -1, false},
		{"text", 1, 0, true},
		{"huge", 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			before := m[tt.key]
			got, err := increment(m, tt.key, tt.by)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				if !m[tt.key].Equal(before) {
					t.Errorf("Failed increment must not change the value")
				}
				return
			}
			if got != tt.want || !m[tt.key].Equal(value.Int(tt.want)) {
				t.Errorf("Expected %d, got %d (stored %s)", tt.want, got, m[tt.key])
			}
		})
	}
}

func TestDumpJSON(t *testing.T) {
	out, err := dumpJSON(map[string]value.Value{
		"b": value.Int(1),
		"a": value.List(value.String("x")),
	})
	if err != nil {
		t.Fatalf("dumpJSON failed: %v", err)
	}
	if !json.Valid(out) {
		t.Fatalf("Expected valid JSON, got %s", out)
	}
	s := string(out)
	if strings.Index(s, `"a"`) > strings.Index(s, `"b"`) {
		t.Errorf("Expected sorted keys, got %s", s)
	}
	if !strings.Contains(s, "\n  \"a\"") {
		t.Errorf("Expected indented output, got %s", s)
	}
}
