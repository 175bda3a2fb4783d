// Package lockmgr implements the lock controller of the file store: advisory
// shared and exclusive locks attached to one open file handle, acquired
// without blocking and polled with bounded retries.
//
// The lockmgr holds no state besides the lock state of its handle. It never
// keeps a registry of open files; two handles on the same path are two
// independent controllers, and the operating system arbitrates between them.
//
// Core Functionality:
//   - Non-blocking shared (read) and exclusive (write) lock acquisition
//   - Bounded polling through the retry package instead of blocking calls
//   - A small state machine per handle: Unlocked, SharedLocked, ExclusiveLocked
//   - Scoped acquisition (WithLock) that releases on every exit path
//
// Implementation Approach:
//
//	- Unix: flock(2) with LOCK_NB. flock locks belong to the open file
//	  description, so a second handle opened by the same process conflicts
//	  with the first one exactly like a handle of another process does.
//
//	- Windows: LockFileEx with LOCKFILE_FAIL_IMMEDIATELY over the whole file.
//
//	- Other platforms: every acquisition fails with ErrUnsupported.
//
// State Machine:
//
//	Unlocked --TryLock(Shared)--> SharedLocked --Unlock--> Unlocked
//	Unlocked --TryLock(Exclusive)--> ExclusiveLocked --Unlock--> Unlocked
//
//	Acquiring from any state other than Unlocked fails with ErrLockHeld; a
//	caller that finds a stale lock (e.g. after a failed release) must release
//	it explicitly before acquiring again. Locks are never upgraded in place.
//
// Error Handling:
//
//	Contention is reported as ErrWouldBlock. Lock and Release treat every
//	failure as retryable and, once the retry policy is exhausted, return a
//	*LockError or *UnlockError carrying the requested mode or held state.
//
// Usage Example:
//
//	l := lockmgr.NewFileLock(f)
//	err := lockmgr.WithLock(l, lockmgr.Exclusive, retry.DefaultPolicy(), func() error {
//	    // write the file
//	    return nil
//	})
//
// Advisory locks only protect against cooperating processes: anything that
// writes the file without taking the lock is not excluded.
package lockmgr
