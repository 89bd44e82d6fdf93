package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/checkin/internal/utils"
)

const (
	// DefaultTimeout is the per-attempt request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the total number of attempts (not extra retries).
	DefaultRetries = 3
	// DefaultRetryDelay is the base wait between attempts; the actual wait
	// grows linearly with the attempt number.
	DefaultRetryDelay = 1 * time.Second
)

// defaultHeaders are sent on every request unless overridden per call.
// Upstream reward APIs are picky about browser-looking clients.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
}

// NetworkError is returned when all attempts against an endpoint failed.
type NetworkError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Config tunes the client. Zero values fall back to the defaults above.
type Config struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Headers    map[string]string // merged over defaultHeaders
}

// Client issues outbound requests with per-attempt timeout and bounded retry.
// It keeps no state between calls.
type Client struct {
	hc         *http.Client
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	headers    map[string]string
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries <= 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	headers := make(map[string]string, len(defaultHeaders)+len(cfg.Headers))
	for k, v := range defaultHeaders {
		headers[k] = v
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	return &Client{
		hc:         &http.Client{},
		timeout:    cfg.Timeout,
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
		headers:    headers,
	}
}

// Options describes a single request.
type Options struct {
	Method  string            // defaults to GET
	Headers map[string]string // per-call headers, override client defaults
	Body    any               // string and []byte are sent raw, anything else is JSON-encoded
	Cookie  string            // attached as a Cookie header when non-empty
}

// Response is a decoded-enough response: callers must not assume shape
// and decide between Decode and Text based on IsJSON.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsJSON reports whether the response declared a JSON content type.
func (r *Response) IsJSON() bool {
	return strings.Contains(r.Header.Get("Content-Type"), "json")
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Text returns the raw body as a string.
func (r *Response) Text() string { return string(r.Body) }

// Request performs the call with retry. Any failure (transport error,
// timeout, non-2xx status) counts as a failed attempt; between attempts
// the client waits retryDelay multiplied by the attempt number. The last
// failure is surfaced wrapped in a NetworkError.
func (c *Client) Request(ctx context.Context, url string, opt Options) (*Response, error) {
	payload, headers, err := c.prepare(opt)
	if err != nil {
		return nil, err
	}

	method := opt.Method
	if method == "" {
		method = http.MethodGet
	}

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		resp, err := c.do(ctx, method, url, headers, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == c.retries {
			return nil, &NetworkError{URL: url, Attempts: attempt, Err: lastErr}
		}
		if err := sleep(ctx, c.retryDelay*time.Duration(attempt)); err != nil {
			return nil, &NetworkError{URL: url, Attempts: attempt, Err: lastErr}
		}
	}

	return nil, &NetworkError{URL: url, Attempts: c.retries, Err: lastErr}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Request(ctx, url, Options{Method: http.MethodGet, Headers: headers})
}

// PostJSON performs a POST request with a JSON-encoded body.
func (c *Client) PostJSON(ctx context.Context, url string, body any, headers map[string]string) (*Response, error) {
	return c.Request(ctx, url, Options{Method: http.MethodPost, Headers: headers, Body: body})
}

// RequestWithCookie attaches the caller-supplied credential string as a
// Cookie header. Retry and timeout behavior are unchanged.
func (c *Client) RequestWithCookie(ctx context.Context, url, cookie string, opt Options) (*Response, error) {
	opt.Cookie = cookie
	return c.Request(ctx, url, opt)
}

// prepare resolves the body payload and the effective header set once,
// so every retry attempt sends identical bytes.
func (c *Client) prepare(opt Options) ([]byte, map[string]string, error) {
	headers := make(map[string]string, len(c.headers)+len(opt.Headers)+2)
	for k, v := range c.headers {
		headers[k] = v
	}
	for k, v := range opt.Headers {
		headers[k] = v
	}
	if opt.Cookie != "" {
		headers["Cookie"] = opt.Cookie
	}

	var payload []byte
	switch body := opt.Body.(type) {
	case nil:
	case []byte:
		payload = body
	case string:
		payload = []byte(body)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = data
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = "application/json"
		}
	}

	return payload, headers, nil
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, payload []byte) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer utils.Close(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, resp.Status)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// sleep waits d unless ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
