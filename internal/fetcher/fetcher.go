package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/url"
)

// Fetcher defines the interface region adapters use to reach upstream
// licensing sources.
type Fetcher interface {
	// Download fetches the URL (http, https or ftp) and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)

	// PostForm submits form as application/x-www-form-urlencoded and returns the response body.
	PostForm(ctx context.Context, url string, form url.Values) (io.ReadCloser, error)

	// PostJSON submits payload encoded as JSON and returns the response body.
	PostJSON(ctx context.Context, url string, payload any) (io.ReadCloser, error)
}

// StatusError is returned when an upstream answers with a non-success status
// after retries are exhausted or for statuses that are not retried.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}
