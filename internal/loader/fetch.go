package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"nepsereport/pkg/nepsereport"
)

// maxDownloadSize caps remote inputs at 16MB.
const maxDownloadSize = 16 << 20

// HTTPDoer is an interface for making HTTP requests. It enables dependency
// injection for testing without network calls.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// FetcherOptions controls Fetcher construction.
type FetcherOptions struct {
	Logger     *slog.Logger
	Timeout    time.Duration
	HTTPClient HTTPDoer // Optional: inject custom client for testing
}

// Fetcher downloads input files.
type Fetcher struct {
	logger *slog.Logger
	client HTTPDoer
}

// NewFetcher creates a Fetcher with a 30s default timeout.
func NewFetcher(opts FetcherOptions) *Fetcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{logger: logger, client: client}
}

// Fetch downloads url and returns its body.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nepsereport.WrapError(nepsereport.ErrCodeInvalidInput, "build request", err)
	}
	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nepsereport.NewError(nepsereport.ErrCodeInvalidInput, fmt.Sprintf("fetch %s: http status %d", url, resp.StatusCode))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if len(data) > maxDownloadSize {
		return nil, nepsereport.NewError(nepsereport.ErrCodeInvalidInput, fmt.Sprintf("%s is larger than %d bytes", url, maxDownloadSize))
	}
	f.logger.Info("input downloaded", "url", url, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}
