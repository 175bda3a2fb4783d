package lockmgr

import (
	"os"
	"sync"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/mount-tech/typedb/lib/retry"
)

var Logger = logger.GetLogger("lockmgr")

// FileLock is the lock controller of one open file handle.
type FileLock struct {
	mu    sync.Mutex
	file  *os.File
	state State
}

// NewFileLock creates a lock controller for f in the Unlocked state.
// The controller does not own f; closing f drops any lock held through it.
func NewFileLock(f *os.File) *FileLock {
	return &FileLock{file: f}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see lockmgr.ILock)
// --------------------------------------------------------------------------

func (l *FileLock) TryLock(mode Mode) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return ErrClosed
	}
	if l.state != Unlocked {
		return ErrLockHeld
	}
	if err := lockFile(l.file, mode); err != nil {
		return err
	}
	l.state = stateFor(mode)
	return nil
}

func (l *FileLock) Lock(mode Mode, policy retry.Policy) error {
	err := retry.Do(policy, func() error {
		return l.TryLock(mode)
	})
	if err != nil {
		Logger.Debugf("could not acquire %s lock: %v", mode, err)
		return &LockError{Mode: mode, Err: err}
	}
	return nil
}

func (l *FileLock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Unlocked {
		return nil
	}
	if l.file == nil {
		return ErrClosed
	}
	if err := unlockFile(l.file); err != nil {
		return err
	}
	l.state = Unlocked
	return nil
}

func (l *FileLock) Release(policy retry.Policy) error {
	held := l.State()
	err := retry.Do(policy, l.Unlock)
	if err != nil {
		Logger.Warningf("could not release %s lock: %v", held, err)
		return &UnlockError{State: held, Err: err}
	}
	return nil
}

func (l *FileLock) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// --------------------------------------------------------------------------
// Scoped Acquisition
// --------------------------------------------------------------------------

// WithLock acquires the lock in the given mode, runs fn and releases the lock
// on every exit path. The error of fn takes precedence over a release error;
// a failed acquisition is a *LockError and a failed release an *UnlockError,
// so callers can tell both apart from errors of fn.
func WithLock(l ILock, mode Mode, policy retry.Policy, fn func() error) error {
	if err := l.Lock(mode, policy); err != nil {
		return err
	}

	fnErr := fn()
	relErr := l.Release(policy)
	if fnErr != nil {
		return fnErr
	}
	return relErr
}

// Detach marks the lock controller as unusable. It is called right before the
// underlying file is closed, which drops any lock the OS still holds for it.
func (l *FileLock) Detach() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.file = nil
	l.state = Unlocked
}
