package codec

import (
	"fmt"
	"testing"

	"github.com/mount-tech/typedb/lib/value"
)

// benchmarkMappings returns a set of mappings for targeted benchmarking
func benchmarkMappings() map[string]map[string]value.Value {
	small := map[string]value.Value{"k": value.String("v")}

	medium := make(map[string]value.Value, 100)
	for i := 0; i < 100; i++ {
		medium[fmt.Sprintf("key-%d", i)] = value.Int(int64(i))
	}

	large := make(map[string]value.Value, 1000)
	for i := 0; i < 1000; i++ {
		large[fmt.Sprintf("key-%d", i)] = value.Map(map[string]value.Value{
			"name":  value.String(fmt.Sprintf("name-%d", i)),
			"score": value.Float(float64(i) / 3),
			"tags":  value.List(value.String("a"), value.String("b")),
		})
	}

	return map[string]map[string]value.Value{
		"Small":  small,
		"Medium": medium,
		"Large":  large,
	}
}

// BenchmarkEncode benchmarks encoding for all implementations with various mapping sizes
func BenchmarkEncode(b *testing.B) {
	for name, factory := range testCodecs {
		for mName, m := range benchmarkMappings() {
			b.Run(name+"_"+mName, func(b *testing.B) {
				c := factory(b)
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					if _, err := c.Encode(m); err != nil {
						b.Fatalf("Failed to encode: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDecode benchmarks decoding for all implementations with various mapping sizes
func BenchmarkDecode(b *testing.B) {
	for name, factory := range testCodecs {
		for mName, m := range benchmarkMappings() {
			b.Run(name+"_"+mName, func(b *testing.B) {
				c := factory(b)
				data, err := c.Encode(m)
				if err != nil {
					b.Fatalf("Failed to encode: %v", err)
				}
				b.SetBytes(int64(len(data)))
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					if _, err := c.Decode(data); err != nil {
						b.Fatalf("Failed to decode: %v", err)
					}
				}
			})
		}
	}
}
