package swfutil

import (
	"fmt"
	"math"
)

const (
	// LengthFieldOffset is where the little-endian u32 total length lives.
	LengthFieldOffset = 4
	// PreambleSize covers signature, version and the length field.
	PreambleSize = 8
	// EndTagSize is the size of the End tag WriteSWF always appends.
	EndTagSize = 2

	ContentType = "application/x-shockwave-flash"
)

// Compression identifies how the body following the preamble is encoded.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZlib
	CompressionLzma
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionLzma:
		return "lzma"
	}
	return fmt.Sprintf("compression(%d)", int(c))
}

func (c Compression) signature() ([3]byte, error) {
	switch c {
	case CompressionNone:
		return [3]byte{'F', 'W', 'S'}, nil
	case CompressionZlib:
		return [3]byte{'C', 'W', 'S'}, nil
	case CompressionLzma:
		return [3]byte{'Z', 'W', 'S'}, nil
	}
	return [3]byte{}, fmt.Errorf("unknown compression %d", int(c))
}

func compressionFromSignature(sig []byte) (Compression, error) {
	switch string(sig) {
	case "FWS":
		return CompressionNone, nil
	case "CWS":
		return CompressionZlib, nil
	case "ZWS":
		return CompressionLzma, nil
	}
	return 0, fmt.Errorf("invalid SWF signature %q", sig)
}

// Twips is the sub-pixel linear unit of SWF geometry, 1/20 of a pixel.
type Twips int32

const TwipsPerPixel = 20

func TwipsFromPixels(px float64) Twips {
	return Twips(math.Round(px * TwipsPerPixel))
}

func (t Twips) ToPixels() float64 {
	return float64(t) / TwipsPerPixel
}

type Rectangle struct {
	XMin Twips
	XMax Twips
	YMin Twips
	YMax Twips
}

func (r Rectangle) Width() Twips  { return r.XMax - r.XMin }
func (r Rectangle) Height() Twips { return r.YMax - r.YMin }

// Fixed8 is an unsigned 8.8 fixed point number as stored for the frame rate.
type Fixed8 uint16

func Fixed8FromFloat(f float64) Fixed8 {
	return Fixed8(math.Round(f * 256))
}

func (f Fixed8) Float64() float64 {
	return float64(f) / 256
}

// Header is the decoded SWF header. UncompressedLength counts the whole file,
// preamble included, once decompressed.
type Header struct {
	Compression        Compression
	Version            uint8
	UncompressedLength uint32
	StageSize          Rectangle
	FrameRate          Fixed8
	NumFrames          uint16
}

// HeaderLength returns the number of bytes h occupies before the tag stream.
func HeaderLength(h *Header) int {
	return PreambleSize + rectangleSize(h.StageSize) + 4
}
