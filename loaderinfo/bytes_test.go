package loaderinfo

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/bytearray"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"
)

// scenarioTags fills exactly 5000 bytes: a long-form DoAction tag, then End.
func scenarioTags() []swfutil.Tag {
	return []swfutil.Tag{{Code: 12, Data: bytes.Repeat([]byte{0x5a}, 5000-6-swfutil.EndTagSize)}}
}

func TestReconstruct_LengthAndLayout(t *testing.T) {
	for _, c := range []swfutil.Compression{swfutil.CompressionNone, swfutil.CompressionZlib, swfutil.CompressionLzma} {
		t.Run(c.String(), func(t *testing.T) {
			movie, _ := encodeMovie(t, stageHeader(c), scenarioTags())
			if len(movie.Data) != 5000 {
				t.Fatalf("tag data length = %d, want 5000", len(movie.Data))
			}

			ba, err := Reconstruct(movie)
			if err != nil {
				t.Fatalf("Reconstruct() error = %v", err)
			}

			headerLen := swfutil.HeaderLength(&movie.Header)
			want := headerLen + len(movie.Data)
			out := ba.Bytes()
			if len(out) != want {
				t.Fatalf("Reconstruct() length = %d, want %d", len(out), want)
			}
			if got := binary.LittleEndian.Uint32(out[4:8]); got != uint32(want) {
				t.Errorf("length field = %d, want %d", got, want)
			}
			if !bytes.Equal(out[headerLen:], movie.Data) {
				t.Error("bytes after header differ from tag data")
			}
			if string(out[:3]) != "FWS" {
				t.Errorf("signature = %q, want FWS", out[:3])
			}
			if ba.Position() != 0 {
				t.Errorf("Position() = %d, want 0", ba.Position())
			}
			if ba.Endian() != bytearray.BigEndian {
				t.Errorf("Endian() = %v, want bigEndian", ba.Endian())
			}
		})
	}
}

func TestReconstruct_ReparsesToSourceHeader(t *testing.T) {
	for _, c := range []swfutil.Compression{swfutil.CompressionNone, swfutil.CompressionZlib, swfutil.CompressionLzma} {
		t.Run(c.String(), func(t *testing.T) {
			movie, _ := encodeMovie(t, stageHeader(c), as3Tags())

			ba, err := Reconstruct(movie)
			if err != nil {
				t.Fatalf("Reconstruct() error = %v", err)
			}
			reparsed, err := swfutil.DecompressSWF(ba.Bytes())
			if err != nil {
				t.Fatalf("DecompressSWF() error = %v", err)
			}

			want := movie.Header
			want.Compression = swfutil.CompressionNone
			if reparsed.Header != want {
				t.Errorf("reparsed header = %+v, want %+v", reparsed.Header, want)
			}
			if !bytes.Equal(reparsed.Data, movie.Data) {
				t.Error("reparsed tag data differs from source")
			}
		})
	}
}

// An uncompressed source reconstructs to exactly its original bytes.
func TestReconstruct_UncompressedIsByteExact(t *testing.T) {
	movie, original := encodeMovie(t, stageHeader(swfutil.CompressionNone), as3Tags())

	ba, err := Reconstruct(movie)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if !bytes.Equal(ba.Bytes(), original) {
		t.Errorf("Reconstruct() = %v, want %v", ba.Bytes(), original)
	}
}

// The End tag the generic writer appends is exactly EndTagSize bytes, so a
// header written on its own is that much shorter than an empty movie.
func TestReconstruct_GenericWriterEndTagContract(t *testing.T) {
	h := stageHeader(swfutil.CompressionNone)

	var empty bytes.Buffer
	if err := swfutil.WriteSWF(&empty, &swfutil.SWF{Header: h}); err != nil {
		t.Fatalf("WriteSWF() error = %v", err)
	}
	if empty.Len() != swfutil.HeaderLength(&h)+swfutil.EndTagSize {
		t.Fatalf("empty SWF length = %d, want header %d + end tag %d", empty.Len(), swfutil.HeaderLength(&h), swfutil.EndTagSize)
	}

	movie := &swfutil.Movie{Header: h, Data: []byte{0, 0}}
	ba, err := Reconstruct(movie)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if !bytes.Equal(ba.Bytes(), empty.Bytes()) {
		t.Errorf("Reconstruct() of End-only movie = %v, want %v", ba.Bytes(), empty.Bytes())
	}
}

func TestReconstruct_EmptyTagData(t *testing.T) {
	h := stageHeader(swfutil.CompressionZlib)
	ba, err := Reconstruct(&swfutil.Movie{Header: h})
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if ba.Len() != swfutil.HeaderLength(&h) {
		t.Errorf("Reconstruct() length = %d, want %d", ba.Len(), swfutil.HeaderLength(&h))
	}
}

func TestBytes_FreshOnEveryRead(t *testing.T) {
	movie, _ := encodeMovie(t, stageHeader(swfutil.CompressionNone), as3Tags())
	li := loadedInfo(NewRuntime(nil), movie)

	first, err := li.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	first.SetPosition(0)
	first.WriteBytes([]byte("XXX"))
	first.SetEndian(bytearray.LittleEndian)

	second, err := li.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if first == second {
		t.Fatal("Bytes() returned the same array twice")
	}
	if string(second.Bytes()[:3]) != "FWS" {
		t.Errorf("second Bytes() signature = %q, want FWS", second.Bytes()[:3])
	}
	if second.Endian() != bytearray.BigEndian || second.Position() != 0 {
		t.Errorf("second Bytes() state = %v@%d, want bigEndian@0", second.Endian(), second.Position())
	}

	v, err := second.ReadUnsignedInt()
	if err != nil {
		t.Fatalf("ReadUnsignedInt() error = %v", err)
	}
	if v != binary.BigEndian.Uint32([]byte{'F', 'W', 'S', 6}) {
		t.Errorf("ReadUnsignedInt() = %#x, want big-endian read of FWS\\x06", v)
	}
}
