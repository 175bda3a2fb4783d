// Package codec provides snapshot serialization for the file backed store.
// A codec turns the complete key-value mapping of a store into one byte
// sequence and back; the store writes that sequence as the whole file content.
//
// Key Components:
//
//   - Codec: Generic interface that all codec implementations must satisfy.
//
//   - binaryCodecImpl: Compact varint based format for string -> value.Value
//     mappings, built on protowire. Keys are written in sorted order so equal
//     mappings always produce equal bytes. Nesting is bounded by value.MaxDepth
//     on both encode and decode, and element counts are checked against the
//     remaining input before anything is allocated.
//
//   - gobCodecImpl: Implementation using Go's gob encoding. Works for any key and
//     value types gob supports and is the default for typed stores.
//
//   - jsonCodecImpl: Implementation using JSON encoding. Slower and larger, but the
//     file stays human readable. value.Value uses a tagged form ({"int":1}) so no
//     type information is lost.
//
//   - zstdCodecImpl: Wraps any other codec and compresses its output with zstd.
//
// Decoding Rules:
//
//	All implementations share the same contract: a zero-length input decodes to an
//	empty mapping, and garbage, truncated input or bytes that belong to a different
//	shape return an error. Values implementing Validate() error (value.Value does)
//	are validated on encode and decode.
//
// Thread Safety:
//
//	All codecs are stateless (the zstd wrapper only holds encoder/decoder instances
//	whose EncodeAll/DecodeAll are concurrency safe) and can be shared across goroutines.
//
// Usage:
//
//	c, err := codec.ForValues(codec.NameBinary, true)
//	data, err := c.Encode(map[string]value.Value{"a": value.Int(1)})
//	m, err := c.Decode(data)
package codec
