package lockmgr

import "github.com/mount-tech/typedb/lib/retry"

// ILock defines the interface for an advisory lock attached to one open file.
type ILock interface {
	// TryLock makes a single, non-blocking attempt to take the lock in the given mode.
	// It returns ErrWouldBlock if another handle holds a conflicting lock and ErrLockHeld
	// if this handle is not in the Unlocked state.
	TryLock(mode Mode) (err error)

	// Lock calls TryLock under the given retry policy.
	// If every attempt fails a *LockError is returned.
	Lock(mode Mode, policy retry.Policy) (err error)

	// Unlock makes a single attempt to drop the lock. Unlocking an unlocked handle is a no-op.
	Unlock() (err error)

	// Release calls Unlock under the given retry policy.
	// If every attempt fails an *UnlockError is returned.
	Release(policy retry.Policy) (err error)

	// State returns the current state of the lock.
	State() (state State)

	// Detach marks the lock as unusable right before its file is closed.
	Detach()
}

var _ ILock = (*FileLock)(nil)
