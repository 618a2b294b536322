// Package fetcher downloads dataset and boundary files over HTTP or from the
// local filesystem.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// IsRemote reports whether location is an http(s) URL rather than a path.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Open returns the contents of location, downloading it with f when it is a
// URL and reading it from disk otherwise.
func Open(ctx context.Context, f Fetcher, location string) (io.ReadCloser, error) {
	if IsRemote(location) {
		return f.Download(ctx, location)
	}
	file, err := os.Open(strings.TrimPrefix(location, "file://"))
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", location)
	}
	return file, nil
}
