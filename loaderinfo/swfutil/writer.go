package swfutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/ulikunitz/xz/lzma"
)

// lzmaAloneHeaderSize is props(1) + dict size(4) + uncompressed size(8) as
// written by the lzma package. SWF keeps only the first five.
const (
	lzmaPropsSize       = 5
	lzmaAloneHeaderSize = 13
)

func appendHeaderBody(dst []byte, h *Header) []byte {
	dst = append(dst, encodeRectangle(h.StageSize)...)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(h.FrameRate))
	dst = binary.LittleEndian.AppendUint16(dst, h.NumFrames)
	return dst
}

// WriteHeader writes an uncompressed header for h with the length field left
// as zero, and returns the number of bytes written. The caller appends the
// tag stream and then backfills the u32 at LengthFieldOffset.
func WriteHeader(w io.Writer, h *Header) (int, error) {
	if h.Compression != CompressionNone {
		return 0, fmt.Errorf("header with %s compression cannot be written in two phases", h.Compression)
	}
	sig, _ := CompressionNone.signature()
	buf := make([]byte, 0, HeaderLength(h))
	buf = append(buf, sig[:]...)
	buf = append(buf, h.Version)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = appendHeaderBody(buf, h)
	return w.Write(buf)
}

// WriteSWF encodes swf, followed by an End tag, to w. The length field is
// computed from the encoded body; swf.Header.UncompressedLength is ignored.
func WriteSWF(w io.Writer, swf *SWF) error {
	h := &swf.Header
	sig, err := h.Compression.signature()
	if err != nil {
		return err
	}

	body := appendHeaderBody(nil, h)
	for _, tag := range swf.Tags {
		body = appendTag(body, tag)
	}
	body = appendTag(body, Tag{Code: TagEnd})

	preamble := make([]byte, 0, PreambleSize)
	preamble = append(preamble, sig[:]...)
	preamble = append(preamble, h.Version)
	preamble = binary.LittleEndian.AppendUint32(preamble, uint32(PreambleSize+len(body)))

	switch h.Compression {
	case CompressionNone:
	case CompressionZlib:
		if body, err = compressZlib(body); err != nil {
			return err
		}
	case CompressionLzma:
		if body, err = compressLzma(body); err != nil {
			return err
		}
	}

	if _, err := w.Write(preamble); err != nil {
		return fmt.Errorf("failed to write SWF preamble: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write SWF body: %w", err)
	}
	return nil
}

func compressZlib(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return nil, fmt.Errorf("failed to zlib compress SWF body: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish zlib stream: %w", err)
	}
	return buf.Bytes(), nil
}

// compressLzma produces the ZWS body: compressed length (u32 LE), the five
// LZMA property bytes, then the raw LZMA stream.
func compressLzma(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	cfg := lzma.WriterConfig{
		SizeInHeader: true,
		Size:         int64(len(body)),
		EOSMarker:    false,
	}
	lw, err := cfg.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create lzma writer: %w", err)
	}
	if _, err := lw.Write(body); err != nil {
		return nil, fmt.Errorf("failed to lzma compress SWF body: %w", err)
	}
	if err := lw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish lzma stream: %w", err)
	}

	alone := buf.Bytes()
	if len(alone) < lzmaAloneHeaderSize {
		return nil, fmt.Errorf("lzma stream shorter than its header")
	}
	stream := alone[lzmaAloneHeaderSize:]
	out := make([]byte, 0, 4+lzmaPropsSize+len(stream))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(stream)))
	out = append(out, alone[:lzmaPropsSize]...)
	out = append(out, stream...)
	return out, nil
}
