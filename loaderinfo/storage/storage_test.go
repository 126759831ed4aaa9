package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	lierrors "github.com/flaneur2020/swf-loaderinfo/loaderinfo/errors"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"
	"github.com/opencontainers/go-digest"
)

func testMovie(url string, data []byte) *swfutil.Movie {
	return &swfutil.Movie{
		Header:           swfutil.Header{Version: 9},
		Data:             data,
		URL:              url,
		CompressedLength: uint32(len(data) + 21),
	}
}

func TestMemoryStorage_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	movie := testMovie("http://example.com/a.swf", []byte{1, 2, 3})
	dgst, err := s.Put(ctx, movie)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := dgst.Validate(); err != nil {
		t.Fatalf("Put() returned invalid digest %q: %v", dgst, err)
	}

	got, err := s.Get(ctx, dgst)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != movie {
		t.Errorf("Get() = %p, want %p", got, movie)
	}
}

func TestMemoryStorage_GetMissing(t *testing.T) {
	s := NewMemoryStorage()
	_, err := s.Get(context.Background(), digest.FromString("missing"))
	if !errors.Is(err, lierrors.ErrMovieNotFound) {
		t.Errorf("Get() error = %v, want ErrMovieNotFound", err)
	}
}

func TestMemoryStorage_List(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	data := []byte{0, 0}
	a, _ := s.Put(ctx, testMovie("http://example.com/a.swf", data))
	b, _ := s.Put(ctx, testMovie("http://example.com/b.swf", data))
	if a == b {
		t.Fatal("same data from different URLs should have different digests")
	}

	descs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("List() returned %d movies, want 2", len(descs))
	}
	if descs[0].Digest > descs[1].Digest {
		t.Error("List() should be ordered by digest")
	}
	for _, d := range descs {
		if d.Version != 9 {
			t.Errorf("Version = %d, want 9", d.Version)
		}
	}
}

func TestMovieDigest_Stable(t *testing.T) {
	m := testMovie("u", []byte("tags"))
	if MovieDigest(m) != MovieDigest(testMovie("u", []byte("tags"))) {
		t.Error("MovieDigest() should be deterministic")
	}
	if MovieDigest(m) == MovieDigest(testMovie("u", []byte("tagz"))) {
		t.Error("MovieDigest() should depend on tag data")
	}
}

func TestFileSource_Open(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.swf")
	if err := os.WriteFile(path, []byte("FWS-content"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	rc, size, err := FileSource{}.Open(context.Background(), "file://"+path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	if size != 11 {
		t.Errorf("Open() size = %d, want 11", size)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "FWS-content" {
		t.Errorf("content = %q, want FWS-content", data)
	}
}

func TestFileSource_OpenMissing(t *testing.T) {
	_, _, err := FileSource{}.Open(context.Background(), filepath.Join(t.TempDir(), "nope.swf"))
	if lierrors.GetErrorCode(err) != "LOAD_FAILED" {
		t.Errorf("Open() error = %v, want LOAD_FAILED", err)
	}
}

func TestHTTPSource_Open(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != swfutil.ContentType {
			t.Errorf("Accept = %q, want %q", r.Header.Get("Accept"), swfutil.ContentType)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "bob" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/movie.swf":
			w.Header().Set("Content-Type", swfutil.ContentType)
			w.Write([]byte("movie-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	src := NewHTTPSource(false).WithCredential("bob", "secret")

	rc, size, err := src.Open(context.Background(), server.URL+"/movie.swf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	if size != int64(len("movie-bytes")) {
		t.Errorf("Open() size = %d, want %d", size, len("movie-bytes"))
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "movie-bytes" {
		t.Errorf("content = %q, want movie-bytes", data)
	}

	if _, _, err := src.Open(context.Background(), server.URL+"/missing.swf"); lierrors.GetErrorCode(err) != "LOAD_FAILED" {
		t.Errorf("Open() missing error = %v, want LOAD_FAILED", err)
	}
	if _, _, err := NewHTTPSource(false).Open(context.Background(), server.URL+"/movie.swf"); err == nil {
		t.Error("Open() without credentials should fail")
	}
}

func TestMultiSource_Dispatch(t *testing.T) {
	tests := []struct {
		location string
		remote   bool
	}{
		{"http://example.com/a.swf", true},
		{"https://example.com/a.swf", true},
		{"file:///tmp/a.swf", false},
		{"movies/a.swf", false},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			if got := IsRemote(tt.location); got != tt.remote {
				t.Errorf("IsRemote() = %v, want %v", got, tt.remote)
			}
		})
	}
}
