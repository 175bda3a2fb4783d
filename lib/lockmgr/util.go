package lockmgr

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Modes and States
// --------------------------------------------------------------------------

// Mode is the kind of lock requested.
type Mode int

const (
	Shared    Mode = iota // Readers coexist
	Exclusive             // Single writer, excludes all others
)

func (m Mode) String() string {
	switch m {
	case Shared:
		return "shared"
	case Exclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// State is the lock state of a file handle.
type State int

const (
	Unlocked State = iota
	SharedLocked
	ExclusiveLocked
)

func (s State) String() string {
	switch s {
	case Unlocked:
		return "unlocked"
	case SharedLocked:
		return "shared-locked"
	case ExclusiveLocked:
		return "exclusive-locked"
	default:
		return "unknown"
	}
}

// stateFor maps a requested mode to the state reached once it is granted
func stateFor(mode Mode) State {
	if mode == Exclusive {
		return ExclusiveLocked
	}
	return SharedLocked
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrWouldBlock is returned by TryLock when another handle holds a conflicting lock.
	ErrWouldBlock = errors.New("lock is held by another handle")
	// ErrLockHeld is returned by TryLock when this handle already holds a lock.
	ErrLockHeld = errors.New("handle already holds a lock")
	// ErrUnsupported is returned on platforms without advisory file locks.
	ErrUnsupported = errors.New("advisory file locks are not supported on this platform")
	// ErrClosed is returned when the lock's file has been detached.
	ErrClosed = errors.New("lock file is closed")
)

// LockError reports that a lock could not be acquired after all retries.
type LockError struct {
	Mode Mode
	Err  error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("acquiring %s lock: %v", e.Mode, e.Err)
}

func (e *LockError) Unwrap() error {
	return e.Err
}

// UnlockError reports that a lock could not be released after all retries.
type UnlockError struct {
	State State
	Err   error
}

func (e *UnlockError) Error() string {
	return fmt.Sprintf("releasing %s lock: %v", e.State, e.Err)
}

func (e *UnlockError) Unwrap() error {
	return e.Err
}
