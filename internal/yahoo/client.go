// Package yahoo retrieves market data from Yahoo Finance's JSON endpoints and
// returns it in the raw shapes defined by the fetcher package.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"resty.dev/v3"

	"yfin/internal/fetcher"
	"yfin/internal/ratelimit"
)

// Config holds the endpoints and transport settings of a Client.
type Config struct {
	Query1URL string
	Query2URL string
	RootURL   string
	CookieURL string

	UserAgent         string
	Timeout           time.Duration
	RetryCount        int
	RequestsPerSecond float64
}

// Client talks to Yahoo Finance. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *resty.Client
	limiter *ratelimit.Limiter
	now     func() time.Time

	mu    sync.Mutex
	crumb string
}

// New creates a Client for cfg.
func New(cfg Config) *Client {
	limiter := ratelimit.New(cfg.RequestsPerSecond)
	slog.Debug("created yahoo client", "rate_limit", float64(limiter.Limit()), "retry_count", cfg.RetryCount)

	return &Client{
		cfg: cfg,
		http: fetcher.NewHTTPClient(fetcher.ClientOptions{
			Timeout:    cfg.Timeout,
			RetryCount: cfg.RetryCount,
			UserAgent:  cfg.UserAgent,
		}),
		limiter: limiter,
		now:     time.Now,
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

// apiError is the error object Yahoo embeds in its response envelopes.
type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// errorDescription extracts Yahoo's own error description from a response
// body of the form {"<envelope>": {"error": {...}}}.
func errorDescription(body string) string {
	var envelopes map[string]struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &envelopes); err != nil {
		return ""
	}
	for _, env := range envelopes {
		if env.Error != nil && env.Error.Description != "" {
			return env.Error.Description
		}
	}
	return ""
}

func (c *Client) wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	return c.limiter.Wait(ctx, u.Host)
}

// getCrumb performs the cookie and crumb handshake once per Client. The cookie
// endpoint answers with an error status while still setting the session cookie,
// so its response is ignored.
func (c *Client) getCrumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	if err := c.wait(ctx, c.cfg.CookieURL); err != nil {
		return "", err
	}
	if _, err := c.http.R().SetContext(ctx).Get(c.cfg.CookieURL); err != nil && ctx.Err() != nil {
		return "", fetcher.ClassifyTransportError(err)
	}

	crumbURL := c.cfg.Query1URL + "/v1/test/getcrumb"
	if err := c.wait(ctx, crumbURL); err != nil {
		return "", err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		Get(crumbURL)
	if err != nil {
		return "", fetcher.ClassifyTransportError(err)
	}
	if !resp.IsSuccess() {
		return "", fetcher.ClassifyHTTPError(resp.StatusCode(), "failed to obtain crumb")
	}

	crumb := strings.TrimSpace(resp.String())
	if crumb == "" || strings.ContainsAny(crumb, "<{") {
		return "", fetcher.NewValidationError("crumb response was empty or not plain text")
	}
	c.crumb = crumb
	return crumb, nil
}

// call sends one request with the session crumb attached and decodes a
// successful JSON response into out. Error statuses become FetchErrors.
func (c *Client) call(ctx context.Context, method, rawURL string, params url.Values, body, out any) (*resty.Response, error) {
	crumb, err := c.getCrumb(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.wait(ctx, rawURL); err != nil {
		return nil, err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("crumb", crumb)

	req := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetResult(out)

	var resp *resty.Response
	switch method {
	case http.MethodPost:
		resp, err = req.SetHeader("Content-Type", "application/json").SetBody(body).Post(rawURL)
	default:
		resp, err = req.Get(rawURL)
	}
	if err != nil {
		return resp, fetcher.ClassifyTransportError(err)
	}
	if !resp.IsSuccess() {
		return resp, fetcher.ClassifyHTTPError(resp.StatusCode(), errorDescription(resp.String()))
	}
	return resp, nil
}

func (c *Client) get(ctx context.Context, rawURL string, params url.Values, out any) (*resty.Response, error) {
	return c.call(ctx, http.MethodGet, rawURL, params, nil, out)
}

func (c *Client) post(ctx context.Context, rawURL string, params url.Values, body, out any) (*resty.Response, error) {
	return c.call(ctx, http.MethodPost, rawURL, params, body, out)
}

// checkError turns an error object embedded in a successful response into a
// validation error.
func checkError(e *apiError) error {
	if e == nil {
		return nil
	}
	msg := e.Description
	if msg == "" {
		msg = e.Code
	}
	return fetcher.NewValidationError(msg)
}
