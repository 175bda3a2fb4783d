package testing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/mount-tech/typedb/lib/store"
	"github.com/mount-tech/typedb/lib/value"
)

// StoreFactory opens a store instance backed by the file at path.
// Calling it twice with the same path must yield two independent instances
// sharing one file.
type StoreFactory func(path string) (store.IStore[string, value.Value], error)

// RunStoreTests runs a comprehensive test suite for a file backed IStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Insert&Get", func(t *testing.T) {
			testInsertGet(t, factory)
		})

		t.Run("Remove", func(t *testing.T) {
			testRemove(t, factory)
		})

		t.Run("Scenario", func(t *testing.T) {
			testScenario(t, factory)
		})

		t.Run("HasLenSnapshot", func(t *testing.T) {
			testHasLenSnapshot(t, factory)
		})

		t.Run("Reopen", func(t *testing.T) {
			testReopen(t, factory)
		})

		t.Run("CrossInstance", func(t *testing.T) {
			testCrossInstance(t, factory)
		})

		t.Run("ShrinkingSnapshot", func(t *testing.T) {
			testShrinkingSnapshot(t, factory)
		})

		t.Run("Update", func(t *testing.T) {
			testUpdate(t, factory)
		})

		t.Run("ConcurrentUpdate", func(t *testing.T) {
			testConcurrentUpdate(t, factory)
		})

		t.Run("ConcurrentInsert", func(t *testing.T) {
			testConcurrentInsert(t, factory)
		})

		t.Run("Closed", func(t *testing.T) {
			testClosed(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// openStore opens a store and closes it when the test ends
func openStore(t testing.TB, factory StoreFactory, path string) store.IStore[string, value.Value] {
	t.Helper()
	s, err := factory(path)
	if err != nil {
		t.Fatalf("Failed to open store %s: %v", path, err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func newPath(t testing.TB) string {
	return filepath.Join(t.TempDir(), "store.db")
}

func sortedKeys(t testing.TB, s store.IStore[string, value.Value]) []string {
	t.Helper()
	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	sort.Strings(keys)
	return keys
}

func mustInsert(t testing.TB, s store.IStore[string, value.Value], key string, val value.Value) {
	t.Helper()
	if err := s.Insert(key, val); err != nil {
		t.Fatalf("Insert(%s) failed: %v", key, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testInsertGet(t *testing.T, factory StoreFactory) {
	s := openStore(t, factory, newPath(t))

	testKey := "test-key"
	testValue1 := value.String("test-value1")
	testValue2 := value.Map(map[string]value.Value{
		"list": value.List(value.Int(1), value.Float(2.5)),
	})

	mustInsert(t, s, testKey, testValue1)

	result, exists, err := s.Get(testKey)
	if err != nil || !exists {
		t.Fatalf("Expected key %s to exist after Insert (err: %v)", testKey, err)
	}
	if !result.Equal(testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	mustInsert(t, s, testKey, testValue2)

	result, exists, err = s.Get(testKey)
	if err != nil || !exists {
		t.Fatalf("Expected key %s to exist after Insert (err: %v)", testKey, err)
	}
	if !result.Equal(testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	_, exists, err = s.Get("nonexistent-key")
	if err != nil {
		t.Fatalf("Get of a missing key failed: %v", err)
	}
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	// changing a returned value must not change the stored one
	result.Map["list"].List[0] = value.String("changed")
	original, _, _ := s.Get(testKey)
	if !original.Equal(testValue2) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	// changing an inserted value after the call must not change the stored one
	inserted := value.List(value.Int(1))
	mustInsert(t, s, "copy", inserted)
	inserted.List[0] = value.Int(2)
	stored, _, _ := s.Get("copy")
	if !stored.Equal(value.List(value.Int(1))) {
		t.Errorf("Insert should store a copy, got %s", stored)
	}
}

func testRemove(t *testing.T, factory StoreFactory) {
	s := openStore(t, factory, newPath(t))

	mustInsert(t, s, "k", value.Int(1))

	if err := s.Remove("k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, exists, _ := s.Get("k"); exists {
		t.Errorf("Expected key to be gone after Remove")
	}

	// removing again (or a key that never existed) is fine
	if err := s.Remove("k"); err != nil {
		t.Errorf("Second Remove failed: %v", err)
	}
	if err := s.Remove("never-existed"); err != nil {
		t.Errorf("Remove of missing key failed: %v", err)
	}
}

func testScenario(t *testing.T, factory StoreFactory) {
	s := openStore(t, factory, newPath(t))

	mustInsert(t, s, "a", value.Int(1))
	mustInsert(t, s, "b", value.Int(2))

	if keys := sortedKeys(t, s); strings.Join(keys, ",") != "a,b" {
		t.Errorf("Expected keys [a b], got %v", keys)
	}

	if err := s.Remove("a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if keys := sortedKeys(t, s); strings.Join(keys, ",") != "b" {
		t.Errorf("Expected keys [b], got %v", keys)
	}

	if _, exists, err := s.Get("a"); err != nil || exists {
		t.Errorf("Expected a to be absent, got exists=%v err=%v", exists, err)
	}
}

func testHasLenSnapshot(t *testing.T, factory StoreFactory) {
	s := openStore(t, factory, newPath(t))

	if n, err := s.Len(); err != nil || n != 0 {
		t.Errorf("Expected empty store, got len=%d err=%v", n, err)
	}

	mustInsert(t, s, "x", value.String("1"))
	mustInsert(t, s, "y", value.List(value.String("2")))

	if has, err := s.Has("x"); err != nil || !has {
		t.Errorf("Expected Has(x)=true, got %v (%v)", has, err)
	}
	if has, err := s.Has("z"); err != nil || has {
		t.Errorf("Expected Has(z)=false, got %v (%v)", has, err)
	}
	if n, err := s.Len(); err != nil || n != 2 {
		t.Errorf("Expected len 2, got %d (%v)", n, err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap) != 2 || !snap["x"].Equal(value.String("1")) {
		t.Errorf("Unexpected snapshot: %v", snap)
	}

	snap["y"].List[0] = value.String("changed")
	delete(snap, "x")
	if n, _ := s.Len(); n != 2 {
		t.Errorf("Changing a snapshot must not change the store")
	}
	if v, _, _ := s.Get("y"); !v.Equal(value.List(value.String("2"))) {
		t.Errorf("Changing a snapshot value must not change the store, got %s", v)
	}
}

func testReopen(t *testing.T, factory StoreFactory) {
	path := newPath(t)

	s, err := factory(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	mustInsert(t, s, "persisted", value.Float(1.5))
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := openStore(t, factory, path)
	v, exists, err := reopened.Get("persisted")
	if err != nil || !exists {
		t.Fatalf("Expected key to survive reopen (err: %v)", err)
	}
	if !v.Equal(value.Float(1.5)) {
		t.Errorf("Expected 1.5, got %s", v)
	}
}

func testCrossInstance(t *testing.T, factory StoreFactory) {
	path := newPath(t)
	a := openStore(t, factory, path)
	b := openStore(t, factory, path)

	mustInsert(t, a, "from-a", value.String("hello"))

	v, exists, err := b.Get("from-a")
	if err != nil || !exists {
		t.Fatalf("Expected second instance to see the write (err: %v)", err)
	}
	if !v.Equal(value.String("hello")) {
		t.Errorf("Expected hello, got %s", v)
	}

	if err := b.Remove("from-a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if has, _ := a.Has("from-a"); has {
		t.Errorf("Expected first instance to see the removal")
	}
}

func testShrinkingSnapshot(t *testing.T, factory StoreFactory) {
	path := newPath(t)
	s := openStore(t, factory, path)

	mustInsert(t, s, "small", value.Int(1))
	mustInsert(t, s, "big", value.String(strings.Repeat("x", 64*1024)))

	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}

	if err := s.Remove("big"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if after.Size() >= before.Size() {
		t.Errorf("Expected file to shrink from %d bytes, got %d", before.Size(), after.Size())
	}

	// a fresh instance must decode the shorter snapshot without stale bytes
	fresh := openStore(t, factory, path)
	if keys := sortedKeys(t, fresh); strings.Join(keys, ",") != "small" {
		t.Errorf("Expected keys [small], got %v", keys)
	}
}

func testUpdate(t *testing.T, factory StoreFactory) {
	s := openStore(t, factory, newPath(t))
	mustInsert(t, s, "a", value.Int(1))

	err := s.Update(func(m map[string]value.Value) error {
		m["a"] = value.Int(m["a"].Int + 10)
		m["b"] = value.String("new")
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if v, _, _ := s.Get("a"); !v.Equal(value.Int(11)) {
		t.Errorf("Expected 11, got %s", v)
	}
	if has, _ := s.Has("b"); !has {
		t.Errorf("Expected b to be inserted by Update")
	}

	// an error from the callback writes nothing and is returned as is
	errStop := errors.New("stop")
	err = s.Update(func(m map[string]value.Value) error {
		m["a"] = value.Int(0)
		delete(m, "b")
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Errorf("Expected callback error, got %v", err)
	}
	if v, _, _ := s.Get("a"); !v.Equal(value.Int(11)) {
		t.Errorf("Failed Update must not write, got %s", v)
	}

	if err := s.Update(nil); store.CodeOf(err) != store.RetCInvalidOperation {
		t.Errorf("Expected RetCInvalidOperation for nil callback, got %v", err)
	}
}

func testConcurrentUpdate(t *testing.T, factory StoreFactory) {
	path := newPath(t)
	openStore(t, factory, path)

	numWorkers := 4
	incrementsPerWorker := 25

	var wg sync.WaitGroup
	errs := make(chan error, numWorkers*incrementsPerWorker)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := factory(path)
			if err != nil {
				errs <- err
				return
			}
			defer s.Close()

			for i := 0; i < incrementsPerWorker; i++ {
				err := s.Update(func(m map[string]value.Value) error {
					m["counter"] = value.Int(m["counter"].Int + 1)
					return nil
				})
				if err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent update failed: %v", err)
	}

	check := openStore(t, factory, path)
	v, _, err := check.Get("counter")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if want := int64(numWorkers * incrementsPerWorker); v.Int != want {
		t.Errorf("Expected counter %d, got %s", want, v)
	}
}

// Insert is load-modify-persist without holding the lock in between, so
// concurrent writers may overwrite each other's keys (last writer wins).
// What must hold: no operation fails, the file always decodes and at least
// one key survives.
func testConcurrentInsert(t *testing.T, factory StoreFactory) {
	path := newPath(t)
	openStore(t, factory, path)

	numWorkers := 4
	insertsPerWorker := 20

	var wg sync.WaitGroup
	errs := make(chan error, numWorkers*insertsPerWorker*2)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			s, err := factory(path)
			if err != nil {
				errs <- err
				return
			}
			defer s.Close()

			for i := 0; i < insertsPerWorker; i++ {
				if err := s.Insert(fmt.Sprintf("w%d-%d", w, i), value.Int(int64(i))); err != nil {
					errs <- err
				}
				if _, err := s.Keys(); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent operation failed: %v", err)
	}

	check := openStore(t, factory, path)
	keys := sortedKeys(t, check)
	if len(keys) == 0 {
		t.Errorf("Expected at least one key to survive")
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, "w") {
			t.Errorf("Unexpected key %q", k)
		}
	}
}

func testClosed(t *testing.T, factory StoreFactory) {
	s, err := factory(newPath(t))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}

	checks := map[string]error{
		"Insert": s.Insert("k", value.Int(1)),
		"Remove": s.Remove("k"),
		"Update": s.Update(func(map[string]value.Value) error { return nil }),
	}
	_, _, checks["Get"] = s.Get("k")
	_, checks["Keys"] = s.Keys()
	_, checks["Has"] = s.Has("k")
	_, checks["Len"] = s.Len()
	_, checks["Snapshot"] = s.Snapshot()

	for op, err := range checks {
		if !errors.Is(err, &store.Error{Code: store.RetCClosed}) {
			t.Errorf("%s: expected RetCClosed, got %v", op, err)
		}
	}
}
