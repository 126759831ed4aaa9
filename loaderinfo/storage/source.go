package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	lierrors "github.com/flaneur2020/swf-loaderinfo/loaderinfo/errors"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/logger"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"
)

// FileSource reads movies from the local filesystem.
type FileSource struct{}

func (FileSource) Open(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	path := strings.TrimPrefix(location, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, lierrors.ErrLoadFailed.WithDetail("location", location).WithCause(err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, lierrors.ErrLoadFailed.WithDetail("location", location).WithCause(err)
	}
	logger.Debug("Opened %s (%d bytes)", path, stat.Size())
	return f, stat.Size(), nil
}

// HTTPSource fetches movies over HTTP(S).
type HTTPSource struct {
	httpClient *http.Client
	username   string
	password   string
}

// NewHTTPSource creates an HTTP-backed source.
func NewHTTPSource(insecure bool) *HTTPSource {
	client := &http.Client{}
	if insecure {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &HTTPSource{httpClient: client}
}

func (s *HTTPSource) WithCredential(username, password string) *HTTPSource {
	return &HTTPSource{
		httpClient: s.httpClient,
		username:   username,
		password:   password,
	}
}

func (s *HTTPSource) Open(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	logger.Info("Fetching movie: %s", location)

	req, err := http.NewRequestWithContext(ctx, "GET", location, nil)
	if err != nil {
		return nil, 0, lierrors.ErrLoadFailed.WithDetail("location", location).WithCause(err)
	}
	req.Header.Set("Accept", swfutil.ContentType)
	req.Header.Add("Accept", "application/octet-stream")
	if s.username != "" && s.password != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Error("HTTP request failed: %v", err)
		return nil, 0, lierrors.ErrLoadFailed.WithDetail("location", location).WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, 0, lierrors.ErrLoadFailed.WithDetail("location", location).
			WithCause(fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body)))
	}

	logger.Debug("Response content type %q, length %d", resp.Header.Get("Content-Type"), resp.ContentLength)
	return resp.Body, resp.ContentLength, nil
}

// MultiSource dispatches on the location scheme: http(s) URLs go to HTTP,
// everything else to the filesystem.
type MultiSource struct {
	File Source
	HTTP Source
}

func NewMultiSource(insecure bool) *MultiSource {
	return &MultiSource{
		File: FileSource{},
		HTTP: NewHTTPSource(insecure),
	}
}

func (m *MultiSource) Open(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	if IsRemote(location) {
		return m.HTTP.Open(ctx, location)
	}
	return m.File.Open(ctx, location)
}

func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
