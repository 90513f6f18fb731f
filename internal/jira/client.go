package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every request unless WithTimeout or WithHTTPClient
// say otherwise.
const DefaultTimeout = 30 * time.Second

// Client is a thin HTTP client for the Jira Cloud REST API v3.
// It resolves the base URL and auth scheme from its Mode once, at
// construction, and records every call in its Recorder.
type Client struct {
	mode       Mode
	creds      Credentials
	base       string
	httpClient *http.Client
	recorder   *Recorder
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout. The client is copied first, so a
// client given to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		cp := *c.httpClient
		cp.Timeout = d
		c.httpClient = &cp
	}
}

// WithLogger sets the structured logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRecorder makes the client record calls into r.
func WithRecorder(r *Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithBaseURL overrides the mode-derived base URL. Tests use it to point a
// routed client at an httptest server; the mode's auth scheme is kept.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = strings.TrimRight(base, "/") }
}

// NewClient validates the mode and credentials and returns a ready client.
// Configuration problems are reported as *ConfigError and no request is made.
func NewClient(mode Mode, creds Credentials, opts ...Option) (*Client, error) {
	if mode == nil {
		return nil, &ConfigError{Field: "mode", Message: "mode is required"}
	}
	if err := mode.validate(); err != nil {
		return nil, err
	}

	creds.Email = strings.TrimSpace(creds.Email)
	creds.APIToken = strings.TrimSpace(creds.APIToken)
	if creds.Email == "" {
		return nil, &ConfigError{Field: "email", Message: "account email is required"}
	}
	if creds.APIToken == "" {
		return nil, &ConfigError{Field: "api_token", Message: "API token is required"}
	}

	c := &Client{
		mode:       mode,
		creds:      creds,
		base:       mode.baseURL(),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		recorder:   NewRecorder(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Mode returns the addressing mode the client was built with.
func (c *Client) Mode() Mode { return c.mode }

// BaseURL returns the REST API root all relative paths are joined to.
func (c *Client) BaseURL() string { return c.base }

// Recorder returns the client's diagnostics recorder.
func (c *Client) Recorder() *Recorder { return c.recorder }

// Response is a fully read HTTP response.
type Response struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", r.Method, r.URL, err)
	}
	return nil
}

// Payload returns the body decoded as generic JSON, or the raw text when the
// body is not valid JSON. An empty body yields nil.
func (r *Response) Payload() any {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return string(r.Body)
	}
	return v
}

// protocolError builds a ProtocolError describing r.
func (r *Response) protocolError() *ProtocolError {
	return &ProtocolError{
		Method:     r.Method,
		URL:        r.URL,
		StatusCode: r.StatusCode,
		Payload:    r.Payload(),
	}
}

// Do executes a request against base+path. Transport failures come back as
// *TransportError; any HTTP status, including errors, comes back as a
// *Response for the caller to classify. Every call is recorded.
func (c *Client) Do(
	ctx context.Context,
	method string,
	path string,
	body any,
	query url.Values,
) (*Response, error) {
	fullURL := c.base + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var params any = body
	if body == nil && len(query) > 0 {
		params = query
	}

	resp, err := c.do(ctx, method, fullURL, body)
	if err != nil {
		c.recorder.record(DebugInfo{
			URL:    fullURL,
			Method: method,
			Params: params,
			Status: StatusTransportFailure,
			Error:  err.Error(),
		})
		return nil, err
	}

	info := DebugInfo{
		URL:    fullURL,
		Method: method,
		Params: params,
		Status: resp.StatusCode,
	}
	if !resp.OK() {
		info.Error = resp.Payload()
	}
	c.recorder.record(info)

	return resp, nil
}

// do builds the request, attaches auth and reads the whole response.
func (c *Client) do(
	ctx context.Context,
	method string,
	fullURL string,
	body any,
) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mode.authorize(req, c.creds)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("jira request failed",
			"method", method, "url", fullURL, "mode", c.mode.Name(), "error", err)
		return nil, &TransportError{Method: method, URL: fullURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{
			Method: method,
			URL:    fullURL,
			Err:    fmt.Errorf("reading response body: %w", err),
		}
	}

	c.logger.Debug("jira request",
		"method", method,
		"url", fullURL,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return &Response{
		Method:     method,
		URL:        fullURL,
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}

// get performs a GET and decodes a 200 response into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil, query)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return resp.protocolError()
	}
	return resp.Decode(result)
}

// post performs a POST and decodes a 200 response into result.
func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	resp, err := c.Do(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return resp.protocolError()
	}
	return resp.Decode(result)
}
