// Package bytearray implements the script-facing byte sequence returned by
// LoaderInfo.Bytes: a growable buffer with a read/write cursor and a default
// byte order for multi-byte reads and writes.
package bytearray

import (
	"encoding/binary"
	"fmt"
	"io"
)

type Endian int

const (
	BigEndian Endian = iota
	LittleEndian
)

func (e Endian) String() string {
	if e == LittleEndian {
		return "littleEndian"
	}
	return "bigEndian"
}

func (e Endian) order() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// ByteArray is not safe for concurrent use.
type ByteArray struct {
	data     []byte
	position int
	endian   Endian
}

var _ io.Writer = (*ByteArray)(nil)
var _ io.Reader = (*ByteArray)(nil)

func New() *ByteArray {
	return &ByteArray{endian: BigEndian}
}

func (b *ByteArray) Len() int           { return len(b.data) }
func (b *ByteArray) Position() int      { return b.position }
func (b *ByteArray) Endian() Endian     { return b.endian }
func (b *ByteArray) SetEndian(e Endian) { b.endian = e }

// SetPosition moves the cursor. Positions past the end are allowed; the gap
// is zero-filled by the next write.
func (b *ByteArray) SetPosition(pos int) {
	if pos < 0 {
		pos = 0
	}
	b.position = pos
}

func (b *ByteArray) BytesAvailable() int {
	if b.position >= len(b.data) {
		return 0
	}
	return len(b.data) - b.position
}

// Bytes returns a copy of the contents.
func (b *ByteArray) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Write overwrites from the cursor, growing the buffer as needed, and
// advances the cursor.
func (b *ByteArray) Write(p []byte) (int, error) {
	end := b.position + len(p)
	if end > len(b.data) {
		if end > cap(b.data) {
			grown := make([]byte, len(b.data), growCap(cap(b.data), end))
			copy(grown, b.data)
			b.data = grown
		}
		b.data = b.data[:end]
	}
	copy(b.data[b.position:], p)
	b.position = end
	return len(p), nil
}

func growCap(current, needed int) int {
	c := current * 2
	if c < needed {
		c = needed
	}
	return c
}

func (b *ByteArray) WriteBytes(p []byte) {
	_, _ = b.Write(p)
}

func (b *ByteArray) WriteUnsignedInt(v uint32) {
	var tmp [4]byte
	b.endian.order().PutUint32(tmp[:], v)
	b.WriteBytes(tmp[:])
}

func (b *ByteArray) WriteUnsignedShort(v uint16) {
	var tmp [2]byte
	b.endian.order().PutUint16(tmp[:], v)
	b.WriteBytes(tmp[:])
}

// Read implements io.Reader from the cursor.
func (b *ByteArray) Read(p []byte) (int, error) {
	if b.position >= len(b.data) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.position:])
	b.position += n
	return n, nil
}

// ReadBytes reads exactly n bytes from the cursor.
func (b *ByteArray) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > b.BytesAvailable() {
		return nil, fmt.Errorf("read of %d bytes at position %d exceeds length %d", n, b.position, len(b.data))
	}
	out := make([]byte, n)
	copy(out, b.data[b.position:])
	b.position += n
	return out, nil
}

func (b *ByteArray) ReadUnsignedInt() (uint32, error) {
	p, err := b.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return b.endian.order().Uint32(p), nil
}

func (b *ByteArray) ReadUnsignedShort() (uint16, error) {
	p, err := b.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return b.endian.order().Uint16(p), nil
}
