// Package web fetches HTML pages with retry, circuit breaking and DNS
// caching, and extracts their hyperlinks.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound     = errors.New("page not found")
	ErrRateLimited  = errors.New("rate limited by upstream")
	ErrUpstreamDown = errors.New("upstream server unavailable")
	ErrNotHTML      = errors.New("response is not an html document")
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "aer/1.0 (+https://github.com/ralt/aer)"

// maxPageSize bounds how much of a response body is parsed.
const maxPageSize = 16 << 20

// dnsRefreshInterval is how long cached DNS answers are reused.
const dnsRefreshInterval = 5 * time.Minute

// PageFetcher defines the interface for page fetchers.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Fetcher downloads HTML pages.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration

	dns          *dnscache.Resolver
	dnsMu        sync.Mutex
	dnsRefreshed time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxRetries sets the maximum retry attempts.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = max(n, 0)
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.baseDelay = d
	}
}

// WithTimeout sets the overall timeout of a single request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// NewFetcher creates a new Fetcher with the given options.
func NewFetcher(opts ...Option) *Fetcher {
	resolver := &dnscache.Resolver{}
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout: time.Minute,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
					}
					return nil, fmt.Errorf("failed to dial any resolved IP for %s", host)
				},
				MaxIdleConns:          20,
				MaxIdleConnsPerHost:   4,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		userAgent:    DefaultUserAgent,
		maxRetries:   3,
		baseDelay:    500 * time.Millisecond,
		dns:          resolver,
		dnsRefreshed: time.Now(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the page at url and parses its hyperlinks. Rate limited
// and server error responses are retried with exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	f.refreshDNS(time.Now())

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.baseDelay
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.1
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := b.NextBackOff()
			logrus.Debugf("Retrying %s in %s (attempt %d): %v", url, delay, attempt+1, lastErr)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		page, err := f.doFetch(ctx, url)
		if err == nil {
			return page, nil
		}

		lastErr = err

		// Retry on rate limit and server errors only
		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstreamDown) {
			continue
		}
		return nil, err
	}

	return nil, lastErr
}

// refreshDNS drops stale cached DNS answers once dnsRefreshInterval has
// elapsed since the last refresh.
func (f *Fetcher) refreshDNS(now time.Time) {
	f.dnsMu.Lock()
	defer f.dnsMu.Unlock()

	if now.Sub(f.dnsRefreshed) < dnsRefreshInterval {
		return
	}
	f.dns.Refresh(true)
	f.dnsRefreshed = now
}

func (f *Fetcher) doFetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", ErrUpstreamDown, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if !isHTML(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotHTML, url, resp.Header.Get("Content-Type"))
	}

	page, err := ParsePage(resp.Request.URL.String(), io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, err
	}

	logrus.Debugf("Fetched %s with %d links", page.URL(), page.Len())
	return page, nil
}

// isHTML reports whether contentType denotes an HTML document. A missing
// content type is accepted.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
