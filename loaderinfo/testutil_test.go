package loaderinfo

import (
	"bytes"
	"testing"

	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"
)

func stageHeader(c swfutil.Compression) swfutil.Header {
	return swfutil.Header{
		Compression: c,
		Version:     6,
		StageSize:   swfutil.Rectangle{XMax: 11000, YMax: 8000},
		FrameRate:   swfutil.Fixed8FromFloat(24),
		NumFrames:   1,
	}
}

// encodeMovie writes a SWF with the given tags and decodes it back, the way a
// real load would produce a Movie.
func encodeMovie(t *testing.T, h swfutil.Header, tags []swfutil.Tag) (*swfutil.Movie, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if err := swfutil.WriteSWF(&buf, &swfutil.SWF{Header: h, Tags: tags}); err != nil {
		t.Fatalf("WriteSWF() error = %v", err)
	}
	movie, err := swfutil.DecompressSWF(buf.Bytes())
	if err != nil {
		t.Fatalf("DecompressSWF() error = %v", err)
	}
	return movie, buf.Bytes()
}

func as3Tags() []swfutil.Tag {
	return []swfutil.Tag{
		{Code: swfutil.TagFileAttributes, Data: []byte{0x08, 0, 0, 0}},
		{Code: swfutil.TagShowFrame},
	}
}

func loadedInfo(rt *Runtime, movie *swfutil.Movie) *LoaderInfo {
	return newLoaderInfo(LoadedMovie{Movie: movie, Root: rt.Roots.RootOf(movie)}, rt)
}
