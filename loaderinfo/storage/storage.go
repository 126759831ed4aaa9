package storage

import (
	"context"
	_ "crypto/sha256"
	"io"

	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"
	"github.com/opencontainers/go-digest"
)

// MovieDescriptor describes a movie held in storage.
type MovieDescriptor struct {
	Digest           digest.Digest
	URL              string
	Version          uint8
	CompressedLength uint32
}

// Storage is the movie metadata provider: decoded movies keyed by digest.
type Storage interface {
	Put(ctx context.Context, movie *swfutil.Movie) (digest.Digest, error)
	Get(ctx context.Context, dgst digest.Digest) (*swfutil.Movie, error)
	List(ctx context.Context) ([]MovieDescriptor, error)
}

// Source acquires raw movie bytes. size is -1 when unknown.
type Source interface {
	Open(ctx context.Context, location string) (rc io.ReadCloser, size int64, err error)
}

// MovieDigest identifies a movie by its decoded tag stream and the URL it
// was loaded from, so the same file loaded from two places stays distinct.
func MovieDigest(movie *swfutil.Movie) digest.Digest {
	digester := digest.Canonical.Digester()
	h := digester.Hash()
	h.Write([]byte(movie.URL))
	h.Write([]byte{0})
	h.Write(movie.Data)
	return digester.Digest()
}
