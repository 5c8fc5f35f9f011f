package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/pinboard/pkg/observability"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and unexpected statuses.
	ErrNetwork = errors.New("network error")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code       int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string { return "unexpected status " + strconv.Itoa(e.Code) }

// Client performs JSON GET requests with retry.
type Client struct {
	http     *http.Client
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithHeader adds a header sent with every request.
func WithHeader(k, v string) Option { return func(c *Client) { c.headers[k] = v } }

// WithRetry sets the attempt count and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// NewClient returns a client with DefaultTimeout and 3 attempts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: DefaultTimeout},
		headers:  map[string]string{"Accept": "application/ld+json, application/json"},
		attempts: 3,
		delay:    time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	return Retry(ctx, c.attempts, c.delay, func() error {
		body, err := c.do(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()
		if err := json.NewDecoder(body).Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", url, err)
		}
		return nil
	})
}

func (c *Client) do(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		se := &StatusError{Code: code}
		if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			se.RetryAfter = time.Duration(s) * time.Second
		}
		return &RetryableError{Err: fmt.Errorf("%w: %w", ErrNetwork, se), After: se.RetryAfter}
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: %w", ErrNetwork, &StatusError{Code: code})}
	default:
		return fmt.Errorf("%w: %w", ErrNetwork, &StatusError{Code: code})
	}
}
