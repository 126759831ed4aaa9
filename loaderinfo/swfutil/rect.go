package swfutil

import (
	"fmt"
	"math/bits"
)

// RECT is a 5-bit field width followed by four signed fields of that width,
// padded to a byte boundary.

func countSBits(n int32) int {
	switch {
	case n == 0:
		return 0
	case n < 0:
		return 33 - bits.LeadingZeros32(uint32(^n))
	default:
		return 33 - bits.LeadingZeros32(uint32(n))
	}
}

func rectangleBits(r Rectangle) int {
	nbits := 0
	for _, v := range []Twips{r.XMin, r.XMax, r.YMin, r.YMax} {
		if n := countSBits(int32(v)); n > nbits {
			nbits = n
		}
	}
	return nbits
}

func rectangleSize(r Rectangle) int {
	total := 5 + 4*rectangleBits(r)
	return (total + 7) / 8
}

func encodeRectangle(r Rectangle) []byte {
	nbits := rectangleBits(r)
	w := &bitWriter{}
	w.writeUBits(5, uint32(nbits))
	for _, v := range []Twips{r.XMin, r.XMax, r.YMin, r.YMax} {
		w.writeUBits(nbits, uint32(v))
	}
	return w.bytes()
}

// decodeRectangle returns the rectangle and the number of bytes consumed.
func decodeRectangle(p []byte) (Rectangle, int, error) {
	r := &bitReader{data: p}
	nbits, err := r.readUBits(5)
	if err != nil {
		return Rectangle{}, 0, fmt.Errorf("failed to read rectangle size: %w", err)
	}
	var vals [4]int32
	for i := range vals {
		v, err := r.readSBits(int(nbits))
		if err != nil {
			return Rectangle{}, 0, fmt.Errorf("failed to read rectangle field: %w", err)
		}
		vals[i] = v
	}
	rect := Rectangle{
		XMin: Twips(vals[0]),
		XMax: Twips(vals[1]),
		YMin: Twips(vals[2]),
		YMax: Twips(vals[3]),
	}
	return rect, r.consumed(), nil
}

type bitWriter struct {
	buf   []byte
	cur   byte
	nbits uint
}

func (w *bitWriter) writeUBits(n int, v uint32) {
	for i := n - 1; i >= 0; i-- {
		w.cur = w.cur<<1 | byte(v>>uint(i)&1)
		w.nbits++
		if w.nbits == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur, w.nbits = 0, 0
		}
	}
}

func (w *bitWriter) bytes() []byte {
	if w.nbits > 0 {
		w.buf = append(w.buf, w.cur<<(8-w.nbits))
		w.cur, w.nbits = 0, 0
	}
	return w.buf
}

type bitReader struct {
	data []byte
	pos  int // in bits
}

func (r *bitReader) readUBits(n int) (uint32, error) {
	if r.pos+n > len(r.data)*8 {
		return 0, fmt.Errorf("bit field of width %d runs past end of data", n)
	}
	var v uint32
	for i := 0; i < n; i++ {
		b := r.data[r.pos/8] >> (7 - uint(r.pos%8)) & 1
		v = v<<1 | uint32(b)
		r.pos++
	}
	return v, nil
}

func (r *bitReader) readSBits(n int) (int32, error) {
	if n == 0 {
		return 0, nil
	}
	v, err := r.readUBits(n)
	if err != nil {
		return 0, err
	}
	shift := uint(32 - n)
	return int32(v<<shift) >> shift, nil
}

func (r *bitReader) consumed() int {
	return (r.pos + 7) / 8
}
