// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Configuration constants for the chat backend.
const (
	// DefaultBaseURL is where the reference backend listens.
	DefaultBaseURL = "http://localhost:8080"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024

	// FallbackErrorText is shown when a failure carries no body and no cause.
	FallbackErrorText = "Could not reach the server. Is Spring Boot running on port 8080?"

	chatPath = "/chat"
)

// Shared HTTP client with connection pooling for all backend requests.
// Per-request deadlines come from the context.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// ErrRequestFailed is the single error kind for anything that goes wrong
// between sending a query and reading its reply.
var ErrRequestFailed = errors.New("request failed")

// =============================================================================
// ERRORS
// =============================================================================

// RequestError describes a failed query. Status is zero when no response
// arrived.
type RequestError struct {
	Status int
	Body   string
	Cause  error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("Request failed with status code %d", e.Status)
	case e.Cause != nil:
		return fmt.Sprintf("request failed: %v", e.Cause)
	default:
		return ErrRequestFailed.Error()
	}
}

// Is makes every RequestError match ErrRequestFailed.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// Unwrap returns the transport cause, if any.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// ErrorText picks the text shown to the user for a failed query: the response
// body, else the cause's message, else FallbackErrorText.
func ErrorText(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if body := strings.TrimSpace(reqErr.Body); body != "" {
			return decodeBody([]byte(body))
		}
		if reqErr.Cause != nil && reqErr.Cause.Error() != "" {
			return reqErr.Cause.Error()
		}
		if reqErr.Status != 0 {
			return reqErr.Error()
		}
		return FallbackErrorText
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return FallbackErrorText
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends queries to the chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

// New creates a client for the backend at baseURL. An empty baseURL selects
// DefaultBaseURL.
func New(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: sharedHTTPClient,
		timeout:    DefaultTimeout,
		logger:     zap.NewNop(),
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// WithHTTPClient replaces the shared pooled HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithLogger sets the logger used for request logging.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger.Named("client")
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Endpoint returns the full request URL for query.
func (c *Client) Endpoint(query string) string {
	return c.baseURL + chatPath + "?q=" + url.QueryEscape(query)
}

// Ask sends query and returns the reply text.
func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(query), nil)
	if err != nil {
		return "", &RequestError{Cause: err}
	}
	req.Header.Set("Accept", "text/plain, application/json")

	start := time.Now()
	c.logger.Debug("sending query", zap.Int("query_len", len(query)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("path", chatPath),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return "", &RequestError{Cause: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)

	c.logger.Info("request completed",
		zap.String("method", req.Method),
		zap.String("path", chatPath),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)))

	if err != nil {
		return "", &RequestError{Status: statusIfError(resp.StatusCode), Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RequestError{Status: resp.StatusCode, Body: string(body)}
	}

	return decodeBody(body), nil
}

// =============================================================================
// HELPERS
// =============================================================================

// readResponse reads the response body with size limits to prevent memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// decodeBody returns the body as text, decoding it first when it is a JSON
// string literal.
func decodeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return s
		}
	}
	return string(body)
}

// unwrapURLError strips the method and URL that net/http adds, so the query
// text never ends up in a user-facing message.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}

// statusIfError keeps the status only when it already signals failure.
func statusIfError(status int) int {
	if status < 200 || status > 299 {
		return status
	}
	return 0
}
