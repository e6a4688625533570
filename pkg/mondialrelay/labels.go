package mondialrelay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultLabelTimeout bounds a single label PDF download.
const DefaultLabelTimeout = 30 * time.Second

// LabelFetcher downloads label PDFs from the carrier's servers.
type LabelFetcher struct {
	httpClient *http.Client
}

// NewLabelFetcher builds a fetcher with the given per-download timeout.
// A zero timeout falls back to DefaultLabelTimeout.
func NewLabelFetcher(timeout time.Duration) *LabelFetcher {
	if timeout <= 0 {
		timeout = DefaultLabelTimeout
	}
	return &LabelFetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewLabelFetcherWithClient builds a fetcher over a caller-provided
// HTTP client.
func NewLabelFetcherWithClient(client *http.Client) *LabelFetcher {
	return &LabelFetcher{httpClient: client}
}

// Fetch downloads the PDF at url and returns its bytes. A non-200
// status or an empty body counts as a download failure.
func (f *LabelFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLabelDownload, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLabelDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrLabelDownload, resp.StatusCode, url)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLabelDownload, err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty response from %s", ErrLabelDownload, url)
	}
	return content, nil
}

// FetchFormat downloads one expedition label in the requested format.
func (f *LabelFetcher) FetchFormat(ctx context.Context, label *Label, format string) ([]byte, error) {
	url, err := label.URLByFormat(format)
	if err != nil {
		return nil, err
	}
	return f.Fetch(ctx, url)
}
