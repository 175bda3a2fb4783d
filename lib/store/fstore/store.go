package fstore

import (
	"os"

	"github.com/mount-tech/typedb/lib/codec"
	"github.com/mount-tech/typedb/lib/lockmgr"
	"github.com/mount-tech/typedb/lib/retry"
	"github.com/mount-tech/typedb/lib/store"
	"github.com/mount-tech/typedb/lib/value"
)

// Store is a key-value mapping mirrored to a single file.
// A Store must not be used by more than one goroutine at a time; open one
// Store per goroutine (or process) instead.
type Store[K comparable, V any] struct {
	path string
	file *os.File
	lock lockmgr.ILock
	opts Options[K, V]
	data map[K]V
}

var _ store.IStore[string, value.Value] = (*Store[string, value.Value])(nil)

// Open opens (or creates) the file at path and loads its snapshot.
// opts may be nil to use DefaultOptions.
//
// An empty file is an empty store. A file that can not be decoded with the
// configured codec (garbage, or data of different key/value types) fails with
// RetCDecodeFailed.
func Open[K comparable, V any](path string, opts *Options[K, V]) (*Store[K, V], error) {
	o := opts.withDefaults()

	var f *os.File
	err := retry.Do(o.Retry, func() error {
		var err error
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, o.FileMode)
		return err
	})
	if err != nil {
		countError(store.RetCOpenFailed)
		return nil, store.WrapError(store.RetCOpenFailed, "open "+path, err)
	}

	s := &Store[K, V]{
		path: path,
		file: f,
		lock: lockmgr.NewFileLock(f),
		opts: o,
		data: make(map[K]V),
	}
	if err := s.load(false); err != nil {
		s.lock.Detach()
		_ = f.Close()
		return nil, err
	}

	Logger.Debugf("opened %s (%d keys, codec %s)", path, len(s.data), o.Codec.Name())
	return s, nil
}

// OpenValueStore opens a string -> value.Value store using c (nil = gob).
// Values are deep copied on insert and read.
func OpenValueStore(path string, c codec.Codec[string, value.Value]) (*Store[string, value.Value], error) {
	opts := DefaultOptions[string, value.Value]()
	if c != nil {
		opts.Codec = c
	}
	opts.Clone = value.Value.Clone
	return Open(path, opts)
}

// Path returns the path of the backing file.
func (s *Store[K, V]) Path() string {
	return s.path
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *Store[K, V]) Insert(key K, val V) error {
	if err := s.begin("insert"); err != nil {
		return err
	}
	if err := s.load(false); err != nil {
		return err
	}
	s.data[key] = s.clone(val)
	return s.persist()
}

func (s *Store[K, V]) Get(key K) (V, bool, error) {
	var zero V
	if err := s.begin("get"); err != nil {
		return zero, false, err
	}
	if err := s.load(false); err != nil {
		return zero, false, err
	}
	val, ok := s.data[key]
	if !ok {
		return zero, false, nil
	}
	return s.clone(val), true, nil
}

func (s *Store[K, V]) Remove(key K) error {
	if err := s.begin("remove"); err != nil {
		return err
	}
	if err := s.load(false); err != nil {
		return err
	}
	delete(s.data, key)
	return s.persist()
}

func (s *Store[K, V]) Keys() ([]K, error) {
	if err := s.begin("keys"); err != nil {
		return nil, err
	}
	if err := s.load(false); err != nil {
		return nil, err
	}
	keys := make([]K, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *Store[K, V]) Has(key K) (bool, error) {
	if err := s.begin("has"); err != nil {
		return false, err
	}
	if err := s.load(false); err != nil {
		return false, err
	}
	_, ok := s.data[key]
	return ok, nil
}

func (s *Store[K, V]) Len() (int, error) {
	if err := s.begin("len"); err != nil {
		return 0, err
	}
	if err := s.load(false); err != nil {
		return 0, err
	}
	return len(s.data), nil
}

func (s *Store[K, V]) Snapshot() (map[K]V, error) {
	if err := s.begin("snapshot"); err != nil {
		return nil, err
	}
	if err := s.load(false); err != nil {
		return nil, err
	}
	m := make(map[K]V, len(s.data))
	for k, v := range s.data {
		m[k] = s.clone(v)
	}
	return m, nil
}

func (s *Store[K, V]) Update(fn func(m map[K]V) error) error {
	if fn == nil {
		return store.NewError(store.RetCInvalidOperation, "update callback is nil")
	}
	if err := s.begin("update"); err != nil {
		return err
	}
	return s.update(fn)
}

func (s *Store[K, V]) Close() error {
	if s.file == nil {
		return nil
	}

	s.lock.Detach()
	err := s.file.Close()
	s.file = nil
	s.data = nil
	if err != nil {
		return store.WrapError(store.RetCInternalError, "close "+s.path, err)
	}

	Logger.Debugf("closed %s", s.path)
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// begin counts a public operation and rejects it on a closed store
func (s *Store[K, V]) begin(op string) error {
	countOp(op)
	if s.file == nil {
		countError(store.RetCClosed)
		return store.NewError(store.RetCClosed, op+" on closed store "+s.path)
	}
	return nil
}

func (s *Store[K, V]) clone(v V) V {
	if s.opts.Clone == nil {
		return v
	}
	return s.opts.Clone(v)
}
