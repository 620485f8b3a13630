package objectclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/markdave123-py/storage-indexer/internal/core"
)

var _ core.Downloader = (*HTTPDownloader)(nil)

const (
	defaultMaxDownload = 200 << 20 // 200 MB
	errorBodyLimit     = 4 << 10
)

// HTTPDownloader fetches signed URLs with a bounded timeout.
type HTTPDownloader struct {
	client   *http.Client
	maxBytes int64
}

func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	return &HTTPDownloader{
		client:   &http.Client{Timeout: timeout},
		maxBytes: defaultMaxDownload,
	}
}

// Download returns the response body, or *core.HTTPStatusError for non-2xx.
func (d *HTTPDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &core.HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > d.maxBytes {
		return nil, fmt.Errorf("object larger than %d bytes", d.maxBytes)
	}
	return body, nil
}
