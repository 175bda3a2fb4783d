package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// maxDecodedSize bounds the memory a single decompressed snapshot may use
const maxDecodedSize = 1 << 30

// NewZstdCodec wraps inner so that its output is zstd compressed.
// The wrapped format is not readable by inner alone.
func NewZstdCodec[K comparable, V any](inner Codec[K, V]) (Codec[K, V], error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &zstdCodecImpl[K, V]{
		inner: inner,
		enc:   enc,
		dec:   dec,
	}, nil
}

// zstdCodecImpl implements the Codec interface by compressing the output of another codec.
// EncodeAll and DecodeAll are safe for concurrent use, so one instance can be shared.
type zstdCodecImpl[K comparable, V any] struct {
	inner Codec[K, V]
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.Codec)
// --------------------------------------------------------------------------

func (z *zstdCodecImpl[K, V]) Encode(m map[K]V) ([]byte, error) {
	raw, err := z.inner.Encode(m)
	if err != nil {
		return nil, err
	}
	return z.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func (z *zstdCodecImpl[K, V]) Decode(b []byte) (map[K]V, error) {
	if len(b) == 0 {
		return map[K]V{}, nil
	}

	raw, err := z.dec.DecodeAll(b, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return z.inner.Decode(raw)
}

func (z *zstdCodecImpl[K, V]) Name() string {
	return z.inner.Name() + "+zstd"
}
