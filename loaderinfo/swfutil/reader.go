package swfutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
	"github.com/ulikunitz/xz/lzma"
)

// Movie is a decoded SWF: its header and the tag stream that follows it,
// plus the context it was loaded in.
type Movie struct {
	Header Header
	// Data is the decoded tag stream after the header, End tag included.
	Data []byte

	URL        string
	LoaderURL  string
	Parameters map[string]string

	// CompressedLength is the size of the source bytes as loaded.
	CompressedLength uint32
}

// HasLoaderURL reports whether the movie was loaded on behalf of another
// movie. An empty LoaderURL counts as absent.
func (m *Movie) HasLoaderURL() bool { return m.LoaderURL != "" }

// DecompressSWF decodes a complete SWF file into a Movie. URL, LoaderURL and
// Parameters are left for the caller to fill in.
func DecompressSWF(data []byte) (*Movie, error) {
	compressedLength, err := sourceLength(len(data))
	if err != nil {
		return nil, err
	}
	if len(data) < PreambleSize {
		return nil, fmt.Errorf("SWF of %d bytes is smaller than the preamble", len(data))
	}
	compression, err := compressionFromSignature(data[0:3])
	if err != nil {
		return nil, err
	}
	version := data[3]
	uncompressedLength := binary.LittleEndian.Uint32(data[LengthFieldOffset:PreambleSize])
	if uncompressedLength < PreambleSize {
		return nil, fmt.Errorf("declared length %d is smaller than the preamble", uncompressedLength)
	}
	bodyLength := int64(uncompressedLength) - PreambleSize

	var body []byte
	switch compression {
	case CompressionNone:
		body = data[PreambleSize:]
	case CompressionZlib:
		body, err = decompressZlib(data[PreambleSize:], bodyLength)
	case CompressionLzma:
		body, err = decompressLzma(data[PreambleSize:], bodyLength)
	}
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > bodyLength {
		body = body[:bodyLength]
	}

	rect, n, err := decodeRectangle(body)
	if err != nil {
		return nil, err
	}
	if len(body) < n+4 {
		return nil, fmt.Errorf("SWF header truncated after stage rectangle")
	}

	header := Header{
		Compression:        compression,
		Version:            version,
		UncompressedLength: uncompressedLength,
		StageSize:          rect,
		FrameRate:          Fixed8(binary.LittleEndian.Uint16(body[n:])),
		NumFrames:          binary.LittleEndian.Uint16(body[n+2:]),
	}
	tagData := make([]byte, len(body)-(n+4))
	copy(tagData, body[n+4:])

	return &Movie{
		Header:           header,
		Data:             tagData,
		Parameters:       map[string]string{},
		CompressedLength: compressedLength,
	}, nil
}

// sourceLength checks that a source of n bytes fits the u32 length fields.
func sourceLength(n int) (uint32, error) {
	if uint64(n) > math.MaxUint32 {
		return 0, fmt.Errorf("SWF of %d bytes exceeds the 4 GiB format limit", n)
	}
	return uint32(n), nil
}

func decompressZlib(p []byte, size int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, fmt.Errorf("failed to open zlib reader: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, size))
	if err != nil {
		return nil, fmt.Errorf("failed to inflate SWF body: %w", err)
	}
	return out, nil
}

// decompressLzma rebuilds the 13-byte header the lzma package expects from
// the SWF property bytes and the known body size.
func decompressLzma(p []byte, size int64) ([]byte, error) {
	if len(p) < 4+lzmaPropsSize {
		return nil, fmt.Errorf("LZMA SWF body truncated")
	}
	props := p[4 : 4+lzmaPropsSize]
	hdr := make([]byte, 0, lzmaAloneHeaderSize)
	hdr = append(hdr, props...)
	hdr = binary.LittleEndian.AppendUint64(hdr, uint64(size))

	lr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(hdr), bytes.NewReader(p[4+lzmaPropsSize:])))
	if err != nil {
		return nil, fmt.Errorf("failed to open lzma reader: %w", err)
	}
	out, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress SWF body: %w", err)
	}
	return out, nil
}
