// Package fstore implements store.IStore on top of a single file. The whole
// mapping lives in memory and is mirrored to the file as one encoded snapshot.
// Instances never talk to each other; every instance that opens the same path
// (in this or another process) coordinates only through advisory file locks.
//
// Key Components:
//
//   - Store: The public facade. Every operation first loads the snapshot from
//     disk, so reads always see the latest successful write of any instance.
//     Insert and Remove then write the full mapping back.
//
//   - Persistence Engine (engine.go): load reads and decodes the file under a
//     shared lock, persist encodes once and writes under an exclusive lock
//     (seek, write, truncate, sync). Both are retried as a whole according to
//     Options.Retry; a single lock acquisition is retried according to
//     Options.LockRetry. Encoding errors are never retried.
//
//   - Options: Codec (gob by default), retry policies, a Clone function used to
//     copy values on the way in and out, and the mode of newly created files.
//
// File Contents:
//
//	A zero-length file is an empty store. Anything else must decode with the
//	configured codec; a file that does not (garbage, or a snapshot of different
//	key/value types) fails with store.RetCDecodeFailed and is never treated as empty.
//	The file carries no header, so switching the codec of an existing file is a
//	breaking change.
//
// Consistency:
//
//	Writers exclude each other and readers never observe a partially written
//	snapshot. Insert and Remove do not hold a lock between their load and their
//	write, so two instances writing at the same time follow last-writer-wins at
//	the granularity of the whole mapping: one of two concurrent inserts of
//	different keys may be lost. Use Update for read-modify-write cycles that must
//	not lose updates; it holds the exclusive lock from load to write.
//
// Thread Safety:
//
//	A Store is not safe for concurrent use. Give every goroutine its own Store
//	(they may share the path) or serialize access externally.
//
// Usage:
//
//	s, err := fstore.OpenValueStore("data.db", codec.NewBinaryCodec())
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	err = s.Insert("a", value.Int(1))
//	v, ok, err := s.Get("a")
//
//	err = s.Update(func(m map[string]value.Value) error {
//		m["hits"] = value.Int(m["hits"].Int + 1)
//		return nil
//	})
package fstore
