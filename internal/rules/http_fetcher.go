package rules

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// HTTPFetcher retrieves raw zoning text from the scraping collaborator over
// HTTP: GET {base}/zoning/{jurisdiction}/{district} returning plain text.
// Retry and backoff are the collaborator's concern, not ours.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher against the scraper's base URL. Per-call
// deadlines come from the caller's context, so the client itself has no
// timeout.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (f *HTTPFetcher) FetchRawZoningText(ctx context.Context, jurisdiction, district string) (string, error) {
	endpoint := fmt.Sprintf("%s/zoning/%s/%s",
		f.baseURL, url.PathEscape(jurisdiction), url.PathEscape(district))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build scraper request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("scraper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scraper returned status %d for %s/%s", resp.StatusCode, jurisdiction, district)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read scraper response: %w", err)
	}
	return string(body), nil
}
