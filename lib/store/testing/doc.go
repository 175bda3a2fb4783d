// Package testing provides standardised tests and benchmarks for
// file backed stores that satisfy the store.IStore interface.
//
// The package contains:
//   - testing: A test suite for validating conformance to the IStore contract,
//     including cross-instance visibility and concurrent access to one file
//   - benchmark: Performance tests for the common store operations
//
// The factory is called with a file path and may be called several times with
// the same path; every call must return an independent instance.
//
// Example usage:
//
//	factory := func(path string) (store.IStore[string, value.Value], error) {
//		return fstore.OpenValueStore(path, nil)
//	}
//
//	// Running the standard test suite
//	testing.RunStoreTests(t, "fstore", factory)
//
//	// Running performance benchmarks
//	testing.RunStoreBenchmarks(b, "fstore", factory)
package testing
