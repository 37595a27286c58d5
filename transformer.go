package swappool

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
)

/*
Transformer is an optional byte-stream pre/post-processor at the disk
boundary: Forward mutates a value's serialized bytes before they're
written to a swap file, Backward reverses that after reading them back.
Compression and encryption variants both fit this shape; the core only
ships Identity and a compressing Zstd implementation, the encryption side
being out of scope (see spec.md §1).
*/
type Transformer interface {
	// Forward mutates bytes before they're written to disk.
	Forward(data []byte) ([]byte, error)
	// Backward mutates bytes after they're read from disk.
	Backward(data []byte) ([]byte, error)
}

// IdentityTransformer performs no transformation. It is the pool's
// default.
type IdentityTransformer struct{}

func (IdentityTransformer) Forward(data []byte) ([]byte, error)  { return data, nil }
func (IdentityTransformer) Backward(data []byte) ([]byte, error) { return data, nil }

/*
ZstdTransformer compresses swap files with zstd, trading CPU for disk
footprint. It is most useful when the pool's values are large and
compressible (e.g. text-heavy payloads) and disk, not CPU, is the scarcer
resource for the host process.
*/
type ZstdTransformer struct {
	level zstd.EncoderLevel
}

// NewZstdTransformer creates a ZstdTransformer at the given encoder
// level. A level of 0 uses zstd.SpeedDefault.
func NewZstdTransformer(level zstd.EncoderLevel) *ZstdTransformer {
	if level == 0 {
		level = zstd.SpeedDefault
	}
	return &ZstdTransformer{level: level}
}

func (t *ZstdTransformer) Forward(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(t.level))
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (t *ZstdTransformer) Backward(data []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}
