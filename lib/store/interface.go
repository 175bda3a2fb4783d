package store

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the generic interface for interacting with a persistent key–value store.
// Every read operation observes the latest snapshot on disk and every write
// operation persists the whole mapping before returning. All errors returned by
// the store itself are *Error values (or wrap one).
type IStore[K comparable, V any] interface {
	// Insert inserts or replaces the value for a key and persists the mapping.
	Insert(key K, value V) (err error)
	// Get returns a copy of the value for a key. The boolean return value indicates whether a value for the key was found.
	Get(key K) (value V, loaded bool, err error)
	// Remove deletes a key and persists the mapping. Removing an absent key is not an error.
	Remove(key K) (err error)
	// Keys returns copies of all keys in unspecified order.
	Keys() (keys []K, err error)
	// Has returns whether a key exists in the store.
	Has(key K) (loaded bool, err error)
	// Len returns the number of keys in the store.
	Len() (n int, err error)
	// Snapshot returns a copy of the whole mapping.
	Snapshot() (m map[K]V, err error)
	// Update runs fn on a copy of the mapping while holding the exclusive lock and
	// persists the result. If fn returns an error nothing is written and that error is returned.
	Update(fn func(m map[K]V) error) (err error)
	// Close releases the underlying file. Further calls fail with RetCClosed.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the underlying cause.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The underlying cause, may be nil.
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("StoreError (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code,
// so errors.Is(err, &Error{Code: RetCDecodeFailed}) matches by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new store error with the given code and message wrapping err.
func WrapError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// CodeOf returns the code of the first *Error in err's chain,
// RetCSuccess for nil and RetCInternalError for foreign errors.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCInternalError
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Command executed successfully.
	RetCInternalError                   // 1: Command failed due to an internal error.
	RetCInvalidOperation                // 2: Invalid operation (e.g. a nil callback).
	RetCOpenFailed                      // 3: The backing file could not be opened or created.
	RetCReadLockFailed                  // 4: The shared lock could not be acquired.
	RetCWriteLockFailed                 // 5: The exclusive lock could not be acquired.
	RetCUnlockFailed                    // 6: A held lock could not be released.
	RetCSeekFailed                      // 7: Repositioning to the start of the file failed.
	RetCReadFailed                      // 8: Reading the file failed.
	RetCWriteFailed                     // 9: Writing or truncating the file failed.
	RetCFlushFailed                     // 10: Syncing the file to stable storage failed.
	RetCEncodeFailed                    // 11: The mapping could not be encoded.
	RetCDecodeFailed                    // 12: The file content could not be decoded.
	RetCClosed                          // 13: The store has been closed.
)

var retCodeNames = map[RetCode]string{
	RetCSuccess:          "Success",
	RetCInternalError:    "InternalError",
	RetCInvalidOperation: "InvalidOperation",
	RetCOpenFailed:       "OpenFailed",
	RetCReadLockFailed:   "ReadLockFailed",
	RetCWriteLockFailed:  "WriteLockFailed",
	RetCUnlockFailed:     "UnlockFailed",
	RetCSeekFailed:       "SeekFailed",
	RetCReadFailed:       "ReadFailed",
	RetCWriteFailed:      "WriteFailed",
	RetCFlushFailed:      "FlushFailed",
	RetCEncodeFailed:     "EncodeFailed",
	RetCDecodeFailed:     "DecodeFailed",
	RetCClosed:           "Closed",
}

func (c RetCode) String() string {
	if name, ok := retCodeNames[c]; ok {
		return name
	}
	return "Unknown"
}
