package testing

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mount-tech/typedb/lib/store"
	"github.com/mount-tech/typedb/lib/value"
)

// RunStoreBenchmarks runs all benchmarks for a store implementation
func RunStoreBenchmarks(b *testing.B, name string, factory StoreFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Insert", func(b *testing.B) {
			benchmarkInsert(b, factory)
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory)
		})

		for _, size := range []int{10, 1000} {
			b.Run(fmt.Sprintf("InsertInto%d", size), func(b *testing.B) {
				benchmarkInsertPrefilled(b, factory, size)
			})
		}

		b.Run("Update", func(b *testing.B) {
			benchmarkUpdate(b, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func openBenchStore(b *testing.B, factory StoreFactory) store.IStore[string, value.Value] {
	b.Helper()
	s, err := factory(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatalf("Failed to open store: %v", err)
	}
	b.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// Benchmark for Insert operation
func benchmarkInsert(b *testing.B, factory StoreFactory) {
	s := openBenchStore(b, factory)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Insert(fmt.Sprintf("key-%d", i%100), value.Int(int64(i))); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}
}

// Benchmark for Get operation
func benchmarkGet(b *testing.B, factory StoreFactory) {
	s := openBenchStore(b, factory)
	for i := 0; i < 100; i++ {
		if err := s.Insert(fmt.Sprintf("key-%d", i), value.String("value")); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := s.Get(fmt.Sprintf("key-%d", i%100)); err != nil {
			b.Fatalf("Get failed: %v", err)
		}
	}
}

// Benchmark for Insert into a store that already holds size keys
func benchmarkInsertPrefilled(b *testing.B, factory StoreFactory, size int) {
	s := openBenchStore(b, factory)
	err := s.Update(func(m map[string]value.Value) error {
		for i := 0; i < size; i++ {
			m[fmt.Sprintf("prefill-%d", i)] = value.String("value")
		}
		return nil
	})
	if err != nil {
		b.Fatalf("Prefill failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Insert("key", value.Int(int64(i))); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}
}

// Benchmark for a read-modify-write counter
func benchmarkUpdate(b *testing.B, factory StoreFactory) {
	s := openBenchStore(b, factory)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := s.Update(func(m map[string]value.Value) error {
			m["counter"] = value.Int(m["counter"].Int + 1)
			return nil
		})
		if err != nil {
			b.Fatalf("Update failed: %v", err)
		}
	}
}
