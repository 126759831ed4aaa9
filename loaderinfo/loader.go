package loaderinfo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/url"

	lierrors "github.com/flaneur2020/swf-loaderinfo/loaderinfo/errors"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/logger"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/storage"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"
	"github.com/opencontainers/go-digest"
)

const (
	// MaxMovieSize is the largest source a SWF can be: its length fields are u32.
	MaxMovieSize = math.MaxUint32

	// sizes reported by the source are only trusted for preallocation up to here
	maxPreallocSize = 64 << 20
)

// ProgressCallback is called while movie bytes are read
// current: bytes read so far
// total: total size (may be -1 if unknown)
type ProgressCallback func(current int64, total int64)

// LoadOptions carries the context a movie is loaded in.
type LoadOptions struct {
	// LoaderURL is the URL of the movie that requested the load, if any.
	LoaderURL string
	// Parameters override query-string parameters of the movie URL.
	Parameters map[string]string
}

// FetchMovie reads and decodes the movie at location. It does not register
// the movie anywhere.
func FetchMovie(ctx context.Context, source storage.Source, location string, opts LoadOptions, progress ProgressCallback) (*swfutil.Movie, error) {
	rc, size, err := source.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var readerToUse io.Reader = rc
	if progress != nil {
		readerToUse = &progressReader{
			reader:   rc,
			total:    size,
			callback: progress,
		}
	}

	if size > MaxMovieSize {
		return nil, lierrors.ErrLoadFailed.WithDetail("location", location).
			WithCause(fmt.Errorf("declared size %d exceeds limit %d", size, int64(MaxMovieSize)))
	}

	var buf bytes.Buffer
	if size > 0 && size <= maxPreallocSize {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, io.LimitReader(readerToUse, MaxMovieSize+1)); err != nil {
		return nil, lierrors.ErrLoadFailed.WithDetail("location", location).WithCause(err)
	}
	if int64(buf.Len()) > MaxMovieSize {
		return nil, lierrors.ErrLoadFailed.WithDetail("location", location).
			WithCause(fmt.Errorf("movie exceeds limit of %d bytes", int64(MaxMovieSize)))
	}

	movie, err := swfutil.DecompressSWF(buf.Bytes())
	if err != nil {
		return nil, lierrors.ErrLoadFailed.WithDetail("location", location).WithCause(err)
	}

	movie.URL = location
	movie.LoaderURL = opts.LoaderURL
	movie.Parameters = mergeParameters(location, opts.Parameters)

	logger.Info("Loaded %s: SWF v%d, %s compression, %d bytes", location, movie.Header.Version, movie.Header.Compression, movie.CompressedLength)
	return movie, nil
}

// mergeParameters collects the query parameters of location, then applies
// explicit parameters on top. Repeated query keys keep their first value.
func mergeParameters(location string, explicit map[string]string) map[string]string {
	params := make(map[string]string)
	if u, err := url.Parse(location); err == nil {
		for k, vs := range u.Query() {
			if len(vs) > 0 {
				params[k] = vs[0]
			}
		}
	}
	for k, v := range explicit {
		params[k] = v
	}
	return params
}

// Loader is the loading subsystem: it acquires movies, registers them and
// hands out LoaderInfo instances for them.
type Loader struct {
	source  storage.Source
	store   storage.Storage
	runtime *Runtime
}

func NewLoader(source storage.Source, store storage.Storage, runtime *Runtime) *Loader {
	return &Loader{
		source:  source,
		store:   store,
		runtime: runtime,
	}
}

// Load fetches the movie at location and returns its LoaderInfo.
func (l *Loader) Load(ctx context.Context, location string, opts LoadOptions, progress ProgressCallback) (*LoaderInfo, error) {
	movie, err := FetchMovie(ctx, l.source, location, opts, progress)
	if err != nil {
		return nil, err
	}
	return l.LoadMovie(ctx, movie)
}

// LoadMovie registers an already decoded movie and returns its LoaderInfo.
func (l *Loader) LoadMovie(ctx context.Context, movie *swfutil.Movie) (*LoaderInfo, error) {
	if movie == nil {
		return nil, lierrors.ErrLoadFailed.WithCause(fmt.Errorf("nil movie"))
	}
	if movie.Parameters == nil {
		movie.Parameters = map[string]string{}
	}
	dgst, err := l.store.Put(ctx, movie)
	if err != nil {
		return nil, lierrors.ErrLoadFailed.WithCause(err)
	}
	logger.Debug("Stored movie %s as %s", movie.URL, dgst)
	return l.infoFor(movie), nil
}

// Open returns a LoaderInfo for a movie already in storage.
func (l *Loader) Open(ctx context.Context, dgst digest.Digest) (*LoaderInfo, error) {
	movie, err := l.store.Get(ctx, dgst)
	if err != nil {
		return nil, err
	}
	return l.infoFor(movie), nil
}

func (l *Loader) infoFor(movie *swfutil.Movie) *LoaderInfo {
	return newLoaderInfo(LoadedMovie{
		Movie: movie,
		Root:  l.runtime.Roots.RootOf(movie),
	}, l.runtime)
}

// StageInfo returns the LoaderInfo of the top-level content.
func (l *Loader) StageInfo() *LoaderInfo {
	return newLoaderInfo(StageRoot{}, l.runtime)
}

// progressReader wraps an io.Reader to report read progress
type progressReader struct {
	reader   io.Reader
	total    int64
	current  int64
	callback ProgressCallback
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)
	if pr.callback != nil {
		pr.callback(pr.current, pr.total)
	}
	return n, err
}
