package loaderinfo

import (
	"math"

	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/bytearray"
	lierrors "github.com/flaneur2020/swf-loaderinfo/loaderinfo/errors"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/logger"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"
)

// Reconstruct synthesizes an uncompressed SWF for movie: its header with
// compression removed, followed verbatim by movie.Data. The original
// compressed bytes are not needed.
//
// The returned array is positioned at 0 with big-endian byte order.
func Reconstruct(movie *swfutil.Movie) (*bytearray.ByteArray, error) {
	header := movie.Header
	header.Compression = swfutil.CompressionNone
	header.UncompressedLength = uint32(len(movie.Data))

	ba := bytearray.New()
	headerLen, err := swfutil.WriteHeader(ba, &header)
	if err != nil {
		return nil, lierrors.ErrReconstructionInvariant.WithCause(err)
	}
	if headerLen != swfutil.HeaderLength(&header) || headerLen < swfutil.PreambleSize {
		return nil, lierrors.NewReconstructionError("unexpected header length", map[string]interface{}{
			"headerLen": headerLen,
			"expected":  swfutil.HeaderLength(&header),
		})
	}

	ba.SetPosition(headerLen)
	ba.WriteBytes(movie.Data)

	total := headerLen + len(movie.Data)
	if ba.Len() != total {
		return nil, lierrors.NewReconstructionError("reconstructed length mismatch", map[string]interface{}{
			"length":   ba.Len(),
			"expected": total,
		})
	}
	if uint64(total) > math.MaxUint32 {
		return nil, lierrors.NewReconstructionError("movie too large for SWF length field", map[string]interface{}{
			"length": total,
		})
	}

	// The length field is little-endian whatever the array's byte order.
	ba.SetPosition(swfutil.LengthFieldOffset)
	ba.SetEndian(bytearray.LittleEndian)
	ba.WriteUnsignedInt(uint32(total))

	ba.SetPosition(0)
	ba.SetEndian(bytearray.BigEndian)

	logger.Debug("Reconstructed SWF v%d: header %d bytes, tag data %d bytes", header.Version, headerLen, len(movie.Data))
	return ba, nil
}
