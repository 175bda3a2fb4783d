// Package retry provides the bounded retry combinator used by every fallible
// I/O step of the file store (open, lock, seek, read, write, flush, unlock and
// whole load/persist sequences).
//
// The package focuses on:
//   - A single place that defines how many attempts are made and how long to
//     wait between them
//   - Tagging the final failure so callers can tell "gave up after N attempts"
//     apart from other errors
//
// Key Components:
//
//   - Policy: attempt count, fixed interval between attempts and an optional
//     hook that observes every failed attempt that will be retried.
//
//   - Do: runs an operation under a Policy.
//
//   - ExhaustedError: returned by Do when every attempt failed. It wraps the
//     error of the last attempt.
//
// The executor does not classify errors. Deciding whether a failure should be
// retried at all is the caller's responsibility: errors that waiting cannot
// fix (e.g. a map that cannot be encoded) are simply not run through Do.
//
// Usage:
//
//	err := retry.Do(retry.DefaultPolicy(), func() error {
//	    return lock.TryLock(lockmgr.Shared)
//	})
//	var exhausted *retry.ExhaustedError
//	if errors.As(err, &exhausted) {
//	    // gave up after exhausted.Attempts attempts
//	}
package retry
