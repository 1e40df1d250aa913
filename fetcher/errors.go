package fetcher

import (
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a fetch failure.
type Kind string

const (
	KindInvalidURL   Kind = "invalid_url"
	KindTimeout      Kind = "timeout"
	KindHTTPError    Kind = "http_error"
	KindNetworkError Kind = "network_error"
)

// Error is returned when a fetch cannot produce a page. StatusCode is
// zero unless the server answered, Attempts counts requests actually
// sent (zero when validation rejected the URL before any I/O).
type Error struct {
	Kind       Kind
	URL        string
	StatusCode int
	Attempts   int
	Err        error

	retryAfter time.Duration // server-requested delay, 429 only
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether retrying the fetch could succeed. Timeouts,
// network failures, 5xx responses and 429 are transient; other 4xx
// responses and invalid URLs are permanent.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindTimeout, KindNetworkError:
		return true
	case KindHTTPError:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	}
	return false
}
