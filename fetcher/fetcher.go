// Package fetcher retrieves single pages over HTTP with identity
// rotation, retry with exponential backoff, and an outbound politeness
// limit. It performs no parsing; callers get the raw bytes.
package fetcher

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/seo-insights/backend/config"
	"github.com/seo-insights/backend/metrics"
)

// userAgents is the identity pool. Consecutive attempts for the same
// fetch never reuse the previous entry.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// maxRetryAfter caps how long a 429 Retry-After header can delay the
// next attempt.
const maxRetryAfter = time.Minute

// Result is a successfully fetched page.
type Result struct {
	URL         string
	FinalURL    string
	StatusCode  int
	Body        []byte
	ContentType string
	Elapsed     time.Duration
	Attempts    int
}

// Fetcher issues page fetches. Safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     *config.Config
	metrics *metrics.Metrics

	mu   sync.Mutex
	rng  *rand.Rand
	last int
}

// New builds a Fetcher with a tuned transport:
// - Connection pooling
// - Keep-alive connections
func New(cfg *config.Config, m *metrics.Metrics) *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:        100,              // Increase from default 2
		MaxIdleConnsPerHost: 10,               // Increase from default 2
		IdleConnTimeout:     90 * time.Second, // Default is 90s
		TLSHandshakeTimeout: 10 * time.Second, // Default is 10s
		DisableCompression:  false,            // Enable compression
	}

	var limiter *rate.Limiter
	if cfg.FetchPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.FetchPerSecond), 1)
	}

	return &Fetcher{
		client: &http.Client{
			Timeout:   cfg.FetchTimeout,
			Transport: transport,
		},
		limiter: limiter,
		cfg:     cfg,
		metrics: m,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		last:    -1,
	}
}

// SetTransport replaces the HTTP transport. Tests use it to stub
// network responses.
func (f *Fetcher) SetTransport(rt http.RoundTripper) {
	f.client.Transport = rt
}

// SetSeed re-seeds identity rotation so tests can reproduce the exact
// user-agent sequence.
func (f *Fetcher) SetSeed(seed int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rng = rand.New(rand.NewSource(seed))
	f.last = -1
}

func (f *Fetcher) nextUserAgent() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.rng.Intn(len(userAgents))
	if idx == f.last {
		idx = (idx + 1) % len(userAgents)
	}
	f.last = idx
	return userAgents[idx]
}

// Fetch retrieves rawURL. The URL is validated before any I/O.
// Transient failures (timeout, connection errors, 5xx, 429) are retried
// with exponential backoff up to the configured retry count; a 429
// Retry-After header overrides the schedule for the next attempt.
// Other 4xx responses fail immediately.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		ferr := &Error{Kind: KindInvalidURL, URL: rawURL, Err: err}
		f.metrics.IncFetch(string(KindInvalidURL))
		return nil, ferr
	}

	start := time.Now()
	maxAttempts := f.cfg.FetchMaxRetries + 1
	var lastErr *Error
	var retryAfter time.Duration

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := f.backoff(attempt - 1)
			if retryAfter > 0 {
				delay = retryAfter
				retryAfter = 0
			}
			f.metrics.IncFetchRetry()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				lastErr = &Error{Kind: KindTimeout, URL: rawURL, Attempts: attempt - 1, Err: ctx.Err()}
				f.metrics.IncFetch(string(lastErr.Kind))
				return nil, lastErr
			}
		}

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				lastErr = &Error{Kind: KindTimeout, URL: rawURL, Attempts: attempt - 1, Err: err}
				f.metrics.IncFetch(string(lastErr.Kind))
				return nil, lastErr
			}
		}

		result, ferr := f.do(ctx, rawURL, attempt)
		if ferr == nil {
			result.Elapsed = time.Since(start)
			f.metrics.IncFetch("success")
			return result, nil
		}

		lastErr = ferr
		if !ferr.Transient() {
			f.metrics.IncFetch(string(ferr.Kind))
			return nil, ferr
		}
		retryAfter = ferr.retryAfter
	}

	lastErr.Attempts = maxAttempts
	f.metrics.IncFetch(string(lastErr.Kind))
	return nil, lastErr
}

func (f *Fetcher) do(ctx context.Context, rawURL string, attempt int) (*Result, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindInvalidURL, URL: rawURL, Attempts: attempt, Err: err}
	}

	// Browser-like headers to avoid being blocked by some websites
	req.Header.Set("User-Agent", f.nextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(rawURL, attempt, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// Drain a little so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		ferr := &Error{Kind: KindHTTPError, URL: rawURL, StatusCode: resp.StatusCode, Attempts: attempt}
		if resp.StatusCode == http.StatusTooManyRequests {
			ferr.retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return nil, ferr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.FetchMaxBodyBytes))
	if err != nil {
		return nil, classify(rawURL, attempt, err)
	}

	return &Result{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Attempts:    attempt,
	}, nil
}

// classify maps transport-level failures onto the error taxonomy.
func classify(rawURL string, attempt int, err error) *Error {
	ferr := &Error{URL: rawURL, Attempts: attempt, Err: err}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		ferr.Kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		ferr.Kind = KindTimeout
	default:
		ferr.Kind = KindNetworkError
	}
	return ferr
}

// backoff returns the delay before the given retry (1-based): base,
// then doubling, capped at the configured maximum.
func (f *Fetcher) backoff(retry int) time.Duration {
	delay := f.cfg.FetchBackoffBase * time.Duration(1<<(retry-1))
	if f.cfg.FetchBackoffMax > 0 && delay > f.cfg.FetchBackoffMax {
		delay = f.cfg.FetchBackoffMax
	}
	return delay
}

// parseRetryAfter understands the delay-seconds form of Retry-After.
// HTTP-date values fall back to the exponential schedule.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs < 0 {
		return 0
	}
	delay := time.Duration(secs) * time.Second
	if delay > maxRetryAfter {
		return maxRetryAfter
	}
	return delay
}
