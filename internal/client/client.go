package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Request is one call against the API
type Request struct {
	Method  string
	URL     string // absolute, or relative to the client's base URL
	Body    any    // JSON-encoded when non-nil
	Headers map[string]string
	Timeout time.Duration // 0 uses the client default
}

// Response carries the status and the raw payload of a successful call
type Response struct {
	StatusCode int
	Header     http.Header
	Data       json.RawMessage
}

// ResponseError is returned for non-2xx responses
type ResponseError struct {
	StatusCode int
	Data       json.RawMessage
	Message    string // server-provided "message" field, empty when absent
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed (status %d)", e.StatusCode)
}

// RequestHook may mutate an outgoing request; an error aborts the call.
type RequestHook func(req *http.Request) error

// ResponseHook observes every response before it is interpreted.
type ResponseHook func(resp *http.Response)

// Client represents an HTTP client for the dashboard API, configured once at
// process start and shared by every executor.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	headers       map[string]string
	requestHooks  []RequestHook
	responseHooks []ResponseHook
}

// Option configures a Client
type Option func(*Client)

// WithHeader adds a default header sent on every request
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithTimeout sets the default request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRequestHook registers an outgoing-request interceptor
func WithRequestHook(h RequestHook) Option {
	return func(c *Client) { c.requestHooks = append(c.requestHooks, h) }
}

// WithResponseHook registers a response interceptor
func WithResponseHook(h ResponseHook) Option {
	return func(c *Client) { c.responseHooks = append(c.responseHooks, h) }
}

// New creates a new API client
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		headers: map[string]string{
			"Accept": "application/json",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// Use appends interceptors after construction
func (c *Client) Use(req RequestHook, resp ResponseHook) {
	if req != nil {
		c.requestHooks = append(c.requestHooks, req)
	}
	if resp != nil {
		c.responseHooks = append(c.responseHooks, resp)
	}
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs the request and returns the payload of a 2xx response.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var body io.Reader
	if r.Body != nil {
		jsonData, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(r.URL), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	for _, hook := range c.requestHooks {
		if err := hook(req); err != nil {
			return nil, fmt.Errorf("request hook: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	for _, hook := range c.responseHooks {
		hook(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Data:       data,
			Message:    serverMessage(data),
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Data:       data,
	}, nil
}

func (c *Client) resolve(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return c.baseURL + "/" + strings.TrimLeft(u, "/")
}

// serverMessage extracts the "message" field of a JSON error body
func serverMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Message
}
