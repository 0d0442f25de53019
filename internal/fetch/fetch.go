package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/maltedev/buyee-landed-cost/internal/ratelimit"
)

// Browser-like UA; the proxy site serves a reduced page to obvious bots.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Fetcher retrieves the HTML of a marketplace page. The extractor depends on
// this interface so tests can feed it fixtures.
type Fetcher interface {
	Fetch(ctx context.Context, link string) (string, error)
}

// HTTPFetcher fetches pages over plain HTTP with optional pacing between
// requests.
type HTTPFetcher struct {
	client  *http.Client
	limiter ratelimit.RateLimiter
}

func NewHTTPFetcher(timeout time.Duration, limiter ratelimit.RateLimiter) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, link string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetching %s: status %d", link, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", link, err)
	}
	return string(body), nil
}
