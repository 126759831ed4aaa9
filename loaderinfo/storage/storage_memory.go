package storage

import (
	"context"
	"sort"
	"sync"

	lierrors "github.com/flaneur2020/swf-loaderinfo/loaderinfo/errors"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"
	"github.com/opencontainers/go-digest"
)

// MemoryStorage is an in-memory Storage implementation.
type MemoryStorage struct {
	mu     sync.RWMutex
	movies map[digest.Digest]*swfutil.Movie
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage constructs an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		movies: make(map[digest.Digest]*swfutil.Movie),
	}
}

// Put stores movie. The movie must not be mutated afterwards.
func (m *MemoryStorage) Put(ctx context.Context, movie *swfutil.Movie) (digest.Digest, error) {
	dgst := MovieDigest(movie)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.movies[dgst] = movie
	return dgst, nil
}

// Get returns the movie stored under dgst.
func (m *MemoryStorage) Get(ctx context.Context, dgst digest.Digest) (*swfutil.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	movie, ok := m.movies[dgst]
	if !ok {
		return nil, lierrors.ErrMovieNotFound.WithDetail("digest", dgst.String())
	}
	return movie, nil
}

// List returns descriptors for all stored movies, ordered by digest.
func (m *MemoryStorage) List(ctx context.Context) ([]MovieDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	descs := make([]MovieDescriptor, 0, len(m.movies))
	for dgst, movie := range m.movies {
		descs = append(descs, MovieDescriptor{
			Digest:           dgst,
			URL:              movie.URL,
			Version:          movie.Header.Version,
			CompressedLength: movie.CompressedLength,
		})
	}
	sort.Slice(descs, func(i, j int) bool {
		return descs[i].Digest < descs[j].Digest
	})
	return descs, nil
}
