package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"resty.dev/v3"
)

const (
	// Default retry configuration
	defaultRetryWaitTime    = 1 * time.Second
	defaultRetryMaxWaitTime = 10 * time.Second
)

// ClientOptions configures the HTTP client shared by every request of one
// invocation.
type ClientOptions struct {
	Timeout    time.Duration
	RetryCount int
	UserAgent  string

	// Zero values fall back to the package defaults.
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
}

// NewHTTPClient creates a new HTTP client with retry logic and exponential backoff.
// The client keeps a cookie jar, so a session cookie obtained from one host is
// replayed to the others.
func NewHTTPClient(opts ClientOptions) *resty.Client {
	wait := opts.RetryWaitTime
	if wait == 0 {
		wait = defaultRetryWaitTime
	}
	maxWait := opts.RetryMaxWaitTime
	if maxWait == 0 {
		maxWait = defaultRetryMaxWaitTime
	}

	client := resty.New().
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(wait).
		SetRetryMaxWaitTime(maxWait).
		AddRetryConditions(retryCondition).
		AddRetryHooks(retryHook)

	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return client
}

// retryCondition determines whether a request should be retried based on the response and error
func retryCondition(r *resty.Response, err error) bool {
	// Retry on network errors
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}

	switch code := r.StatusCode(); {
	case code >= 500:
		return true
	case code == 429:
		return true
	case code == 408:
		return true
	default:
		// Client errors (4xx except 408 and 429) are final
		return false
	}
}

// retryHook logs retry attempts for observability
func retryHook(r *resty.Response, err error) {
	if err != nil {
		slog.Debug("retrying request due to error",
			"url", r.Request.URL,
			"attempt", r.Request.Attempt,
			"error", err.Error())
		return
	}

	slog.Debug("retrying request due to status code",
		"url", r.Request.URL,
		"attempt", r.Request.Attempt,
		"status_code", r.StatusCode())
}

// ClassifyTransportError turns an error returned by the HTTP client, as opposed
// to an error status, into a FetchError.
func ClassifyTransportError(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewTimeoutError(err)
	}
	return NewNetworkError(err)
}
