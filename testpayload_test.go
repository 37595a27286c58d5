package swappool

import (
	"encoding/binary"
	"errors"
)

// blob is the Payload used throughout this package's tests: a simple
// variable-length byte buffer whose SizeOf is its own length, so test
// expectations can be computed by hand without a real codec in the way.
type blob struct {
	data []byte
}

func newBlob(s string) blob { return blob{data: []byte(s)} }

func (b blob) SizeOf() int { return len(b.data) }

func (b blob) MarshalBinary() ([]byte, error) {
	out := make([]byte, 4+len(b.data))
	binary.LittleEndian.PutUint32(out, uint32(len(b.data)))
	copy(out[4:], b.data)
	return out, nil
}

func (b *blob) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return errors.New("blob: short buffer")
	}
	n := binary.LittleEndian.Uint32(data)
	if len(data) < int(4+n) {
		return errors.New("blob: truncated buffer")
	}
	b.data = append([]byte(nil), data[4:4+n]...)
	return nil
}

func (b blob) String() string { return string(b.data) }
