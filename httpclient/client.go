package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Client is an HTTP client with default auth, headers, timeout and proxy.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("httpclient: parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}, nil
}

// Name returns the configured service name.
func (c *Client) Name() string { return c.config.Name }

// Unwrap returns the underlying *http.Client.
func (c *Client) Unwrap() *http.Client {
	return c.httpClient
}

// Do executes an HTTP request and returns the complete response. For a
// non-2xx status both the response and a classified *Error are returned.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(ctx, fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}

	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		classErr.Service = c.config.Name
		return result, classErr
	}
	return result, nil
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := req.Path
	if c.config.BaseURL != "" && !strings.HasPrefix(req.Path, "http://") && !strings.HasPrefix(req.Path, "https://") {
		target = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	body, contentType, length, err := encodeBody(req.Body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}
	if length >= 0 {
		httpReq.ContentLength = length
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	// Request-level auth overrides client-level.
	auth := c.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	if err := auth.apply(httpReq); err != nil {
		return nil, NewValidationError(fmt.Sprintf("authenticate request: %v", err))
	}

	return httpReq, nil
}

// encodeBody converts a body value into a reader, content type and length.
// A length of -1 means unknown.
func encodeBody(body any) (io.Reader, string, int64, error) {
	if body == nil {
		return nil, "", -1, nil
	}
	switch v := body.(type) {
	case *MultipartBody:
		return v.encode()
	case *os.File:
		info, err := v.Stat()
		if err != nil {
			return nil, "", -1, err
		}
		return v, "", info.Size(), nil
	case url.Values:
		s := v.Encode()
		return strings.NewReader(s), "application/x-www-form-urlencoded", int64(len(s)), nil
	case io.Reader:
		return v, "", -1, nil
	case []byte:
		return bytes.NewReader(v), "", int64(len(v)), nil
	case string:
		return strings.NewReader(v), "text/plain", int64(len(v)), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", -1, err
		}
		return bytes.NewReader(data), "application/json", int64(len(data)), nil
	}
}

func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}

func (c *Client) transportError(ctx context.Context, err error) *Error {
	var e *Error
	if ctx.Err() != nil || isTimeout(err) {
		e = NewTimeoutError(err)
	} else {
		e = NewConnectionError(err)
	}
	e.Service = c.config.Name
	return e
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
