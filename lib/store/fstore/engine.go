package fstore

import (
	"errors"
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/mount-tech/typedb/lib/lockmgr"
	"github.com/mount-tech/typedb/lib/retry"
	"github.com/mount-tech/typedb/lib/store"
)

var Logger = logger.GetLogger("store")

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

func countOp(op string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`typedb_ops_total{op=%q}`, op)).Inc()
}

func countRetry(op string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`typedb_retries_total{op=%q}`, op)).Inc()
}

func countError(code store.RetCode) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`typedb_errors_total{code=%q}`, code)).Inc()
}

// --------------------------------------------------------------------------
// Lock Handling
// --------------------------------------------------------------------------

// releaseStale drops a lock still held because an earlier release failed,
// so no attempt starts with a lock it did not take itself.
func (s *Store[K, V]) releaseStale() error {
	held := s.lock.State()
	if held == lockmgr.Unlocked {
		return nil
	}
	Logger.Warningf("releasing stale %s lock on %s", held, s.path)
	if err := s.lock.Release(s.opts.LockRetry); err != nil {
		return store.WrapError(store.RetCUnlockFailed, "release stale lock", err)
	}
	return nil
}

// locked runs fn under the file lock in the given mode. unlockErr is set when
// fn succeeded but the lock could not be released afterwards.
func (s *Store[K, V]) locked(mode lockmgr.Mode, fn func() error) (unlockErr error, err error) {
	if err := s.releaseStale(); err != nil {
		return nil, err
	}

	err = lockmgr.WithLock(s.lock, mode, s.opts.LockRetry, fn)

	var lockErr *lockmgr.LockError
	var relErr *lockmgr.UnlockError
	switch {
	case errors.As(err, &lockErr):
		code := store.RetCReadLockFailed
		if mode == lockmgr.Exclusive {
			code = store.RetCWriteLockFailed
		}
		return nil, store.WrapError(code, fmt.Sprintf("acquire %s lock", mode), err)
	case errors.As(err, &relErr):
		return store.WrapError(store.RetCUnlockFailed, "release lock", err), nil
	}
	return nil, err
}

// --------------------------------------------------------------------------
// Snapshot Transfer (single attempt, lock must be held)
// --------------------------------------------------------------------------

// readSnapshot reads and decodes the whole file. An empty file is an empty mapping.
func (s *Store[K, V]) readSnapshot() (map[K]V, error) {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, store.WrapError(store.RetCSeekFailed, "seek to start", err)
	}

	b, err := io.ReadAll(s.file)
	if err != nil {
		return nil, store.WrapError(store.RetCReadFailed, "read snapshot", err)
	}
	if len(b) == 0 {
		return make(map[K]V), nil
	}

	m, err := s.opts.Codec.Decode(b)
	if err != nil {
		Logger.Warningf("could not decode %s (%d bytes, codec %s): %v", s.path, len(b), s.opts.Codec.Name(), err)
		return nil, store.WrapError(store.RetCDecodeFailed, "decode snapshot", err)
	}
	return m, nil
}

// writeSnapshot replaces the file content with buf and syncs it to disk.
func (s *Store[K, V]) writeSnapshot(buf []byte) error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return store.WrapError(store.RetCSeekFailed, "seek to start", err)
	}
	if _, err := s.file.Write(buf); err != nil {
		return store.WrapError(store.RetCWriteFailed, "write snapshot", err)
	}
	// a shorter snapshot must not leave the tail of the previous one behind
	if err := s.file.Truncate(int64(len(buf))); err != nil {
		return store.WrapError(store.RetCWriteFailed, "truncate snapshot", err)
	}
	if err := s.file.Sync(); err != nil {
		return store.WrapError(store.RetCFlushFailed, "sync snapshot", err)
	}
	return nil
}

// loadAttempt is one attempt of load. If lockHeld is false the shared lock is
// taken and released around the read. unlockErr is set when the read worked
// but the release did not.
func (s *Store[K, V]) loadAttempt(lockHeld bool) (m map[K]V, unlockErr error, err error) {
	read := func() error {
		var err error
		m, err = s.readSnapshot()
		return err
	}

	if lockHeld {
		err = read()
	} else {
		unlockErr, err = s.locked(lockmgr.Shared, read)
	}
	if err != nil {
		return nil, nil, err
	}
	return m, unlockErr, nil
}

// --------------------------------------------------------------------------
// Engine Operations (retried as a whole)
// --------------------------------------------------------------------------

// policy returns the retry policy for op with logging and metrics attached
func (s *Store[K, V]) policy(op string) retry.Policy {
	return s.opts.Retry.WithHook(func(attempt int, err error) {
		countRetry(op)
		Logger.Debugf("%s %s: attempt %d failed: %v", op, s.path, attempt, err)
	})
}

// fail records err and tags an exhausted retry with the code of its last attempt
func (s *Store[K, V]) fail(op string, err error) error {
	code := store.CodeOf(err)
	countError(code)

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		Logger.Warningf("%s %s failed: %v", op, s.path, err)
		return store.WrapError(code, fmt.Sprintf("%s %s", op, s.path), err)
	}
	return err
}

// load replaces the in-memory mapping with the snapshot on disk.
// On failure the in-memory mapping is left untouched. An unlock failure after
// a successful read keeps the loaded data and is returned as RetCUnlockFailed.
func (s *Store[K, V]) load(lockHeld bool) error {
	countOp("load")

	var m map[K]V
	var unlockErr error
	err := retry.Do(s.policy("load"), func() error {
		var err error
		m, unlockErr, err = s.loadAttempt(lockHeld)
		return err
	})
	if err != nil {
		return s.fail("load", err)
	}

	s.data = m
	if unlockErr != nil {
		return s.fail("load", unlockErr)
	}
	return nil
}

// persist writes the in-memory mapping to disk under the exclusive lock.
// Encoding happens once and is never retried; every retry writes the same bytes.
func (s *Store[K, V]) persist() error {
	countOp("persist")

	buf, err := s.opts.Codec.Encode(s.data)
	if err != nil {
		return s.fail("persist", store.WrapError(store.RetCEncodeFailed, "encode snapshot", err))
	}

	var unlockErr error
	err = retry.Do(s.policy("persist"), func() error {
		var err error
		unlockErr, err = s.locked(lockmgr.Exclusive, func() error {
			return s.writeSnapshot(buf)
		})
		return err
	})
	if err != nil {
		return s.fail("persist", err)
	}
	if unlockErr != nil {
		return s.fail("persist", unlockErr)
	}
	return nil
}

// update runs a read-modify-write cycle while holding the exclusive lock the
// whole time, so no other writer can slip in between load and write.
// Errors of fn and encoding end the cycle without a retry.
func (s *Store[K, V]) update(fn func(m map[K]V) error) error {
	countOp("update")

	var (
		result    map[K]V
		abort     error
		unlockErr error
	)
	err := retry.Do(s.policy("update"), func() error {
		abort, result = nil, nil
		var err error
		unlockErr, err = s.locked(lockmgr.Exclusive, func() error {
			m, _, err := s.loadAttempt(true)
			if err != nil {
				return err
			}
			if abort = fn(m); abort != nil {
				return nil
			}

			buf, err := s.opts.Codec.Encode(m)
			if err != nil {
				abort = s.fail("update", store.WrapError(store.RetCEncodeFailed, "encode snapshot", err))
				return nil
			}
			if err := s.writeSnapshot(buf); err != nil {
				return err
			}
			result = m
			return nil
		})
		return err
	})
	if err != nil {
		return s.fail("update", err)
	}
	if abort != nil {
		return abort
	}

	s.data = result
	if unlockErr != nil {
		return s.fail("update", unlockErr)
	}
	return nil
}
