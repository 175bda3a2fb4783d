// Package store defines the interface and the error model shared by typedb's
// persistent key-value stores.
//
// Key Components:
//
//   - IStore Interface: The generic abstraction (IStore[K, V]) for a key-value
//     mapping that is mirrored to durable storage. Every read observes the latest
//     persisted state and every write persists the whole mapping before it returns.
//
//   - Error System: A structured error type carrying a RetCode, a message and the
//     underlying cause. Each step of the persistence protocol has its own code
//     (opening, locking, unlocking, seeking, reading, writing, syncing, encoding,
//     decoding), so callers can react to the failing step instead of parsing
//     messages. errors.Is matches by code:
//
//     if errors.Is(err, &store.Error{Code: store.RetCDecodeFailed}) { ... }
//
//     CodeOf extracts the code from any error chain.
//
// Implementations:
//
//	- File Store (fstore): Keeps the mapping in memory and stores it as a single
//	  snapshot in one file, coordinating concurrent instances through advisory
//	  file locks. Available in the "github.com/mount-tech/typedb/lib/store/fstore" package.
//
// A reusable conformance suite for implementations lives in the
// "github.com/mount-tech/typedb/lib/store/testing" package.
package store
