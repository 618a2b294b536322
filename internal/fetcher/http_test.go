package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
	})
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.Download(context.Background(), srv.URL+"/data")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestDownload_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Download(context.Background(), srv.URL+"/missing.json")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestDownload_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDownload_RetriesWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 3, RatePerHost: 100, Burst: 10})
	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, int32(2), calls.Load())
}

func TestLimiterPerHost(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{RatePerHost: 5})
	a := f.limiterFor("https://example.org/a.json")
	b := f.limiterFor("https://example.org/b.json")
	c := f.limiterFor("https://other.org/a.json")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)

	assert.Nil(t, newTestFetcher().limiterFor("https://example.org"))
}

func TestOpen_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regions.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"FeatureCollection"}`), 0o644))

	rc, err := Open(context.Background(), newTestFetcher(), path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FeatureCollection")

	_, err = Open(context.Background(), newTestFetcher(), filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.org/x"))
	assert.True(t, IsRemote("http://localhost:8080/x"))
	assert.False(t, IsRemote("/data/regions.shp"))
	assert.False(t, IsRemote("file:///data/regions.json"))
}
