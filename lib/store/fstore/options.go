package fstore

import (
	"os"

	"github.com/mount-tech/typedb/lib/codec"
	"github.com/mount-tech/typedb/lib/retry"
)

const defaultFileMode os.FileMode = 0o644

// Options configures a Store during Open
type Options[K comparable, V any] struct {
	Codec     codec.Codec[K, V] // Snapshot format (nil = gob)
	Retry     retry.Policy      // Retries of whole open/load/persist sequences
	LockRetry retry.Policy      // Retries of a single lock acquisition or release
	Clone     func(V) V         // Copies values on insert and read (nil = plain assignment)
	FileMode  os.FileMode       // Permissions of a newly created file (0 = 0644)
}

// DefaultOptions returns the default store options
func DefaultOptions[K comparable, V any]() *Options[K, V] {
	return &Options[K, V]{
		Codec:     codec.NewGOBCodec[K, V](),
		Retry:     retry.DefaultPolicy(),
		LockRetry: retry.DefaultPolicy(),
		FileMode:  defaultFileMode,
	}
}

// withDefaults fills unset fields without touching the caller's struct
func (o *Options[K, V]) withDefaults() Options[K, V] {
	if o == nil {
		return *DefaultOptions[K, V]()
	}
	res := *o
	if res.Codec == nil {
		res.Codec = codec.NewGOBCodec[K, V]()
	}
	if res.Retry.Attempts == 0 {
		res.Retry = withAttempts(res.Retry)
	}
	if res.LockRetry.Attempts == 0 {
		res.LockRetry = withAttempts(res.LockRetry)
	}
	if res.FileMode == 0 {
		res.FileMode = defaultFileMode
	}
	return res
}

// withAttempts applies the default attempts and interval, keeping the hook of p
func withAttempts(p retry.Policy) retry.Policy {
	def := retry.DefaultPolicy()
	def.OnRetry = p.OnRetry
	return def
}
