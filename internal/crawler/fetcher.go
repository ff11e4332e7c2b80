package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrBadStatus is returned when the server answers with a non-2xx status.
// Callers treat it like any other fetch failure: log, mark visited, move on.
var ErrBadStatus = errors.New("unexpected HTTP status")

// Fetcher retrieves pages over HTTP with a politeness delay between
// requests.
//
// Design decision: We use a token-bucket rate limiter rather than sleeping
// in the crawl loop because:
//  1. Wait(ctx) is cancellable, so Ctrl-C never hangs in a sleep
//  2. The first request passes immediately; sleeping first would add a
//     pointless startup delay
//  3. The politeness rule lives with the component that talks to the
//     network instead of in the orchestration loop
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// limiter spaces out requests. A nil limiter means no delay.
	limiter *rate.Limiter

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64
}

// FetchResult is the raw outcome of one successful fetch.
type FetchResult struct {
	// Body is the response body, truncated to the configured size limit.
	Body []byte

	// ContentType is the Content-Type response header.
	ContentType string

	// StatusCode is the HTTP response status code.
	StatusCode int
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithDelay sets the politeness delay between requests.
// A delay of zero disables rate limiting entirely.
func WithDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.limiter = rate.NewLimiter(rate.Every(d), 1)
		} else {
			f.limiter = nil
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// NewFetcher creates a new Fetcher using the given HTTP client.
//
// Design decision: We require an external client because:
//  1. Timeouts are configured once on the client by the caller
//  2. Tests can substitute httptest server clients
//  3. Consistent with how the rest of the tool wires dependencies
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		limiter:     rate.NewLimiter(rate.Every(1*time.Second), 1),
		userAgent:   "docmap/1.0",
		maxBodySize: 5 * 1024 * 1024, // 5MB
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch waits out the politeness delay, then retrieves the URL.
// Network errors, context cancellation, and non-2xx statuses all surface
// as errors; the caller decides whether they are fatal.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d for %s", ErrBadStatus, resp.StatusCode, pageURL)
	}

	bodyReader := io.LimitReader(resp.Body, f.maxBodySize)
	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}
