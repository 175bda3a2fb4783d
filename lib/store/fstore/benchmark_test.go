package fstore

import (
	"testing"

	"github.com/mount-tech/typedb/lib/codec"
	"github.com/mount-tech/typedb/lib/store"
	storetesting "github.com/mount-tech/typedb/lib/store/testing"
	"github.com/mount-tech/typedb/lib/value"
)

func BenchmarkStore(b *testing.B) {
	for _, name := range []string{codec.NameBinary, codec.NameGOB, codec.NameJSON} {
		c, err := codec.ForValues(name, false)
		if err != nil {
			b.Fatalf("Failed to create codec: %v", err)
		}
		storetesting.RunStoreBenchmarks(b, name, func(path string) (store.IStore[string, value.Value], error) {
			return OpenValueStore(path, c)
		})
	}
}
