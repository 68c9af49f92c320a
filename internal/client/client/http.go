package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/hangarkeeper/internal/common"
	"github.com/dmitrijs2005/hangarkeeper/internal/logging"
)

// API is what the services need from the transport.
type API interface {
	Do(ctx context.Context, method, path string, body, out any) error
	Ping(ctx context.Context) error
}

// HTTPClient is the single chokepoint for requests to the remote API.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	before  []RequestHook
	after   []ResponseHook
	log     logging.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.hc = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithRequestHook appends pre-request hooks; they run in registration order.
func WithRequestHook(hooks ...RequestHook) Option {
	return func(c *HTTPClient) { c.before = append(c.before, hooks...) }
}

// WithResponseHook appends post-response hooks; they run in registration order.
func WithResponseHook(hooks ...ResponseHook) Option {
	return func(c *HTTPClient) { c.after = append(c.after, hooks...) }
}

// New builds the adapter. No request timeout is configured: a hung request
// stays pending until ctx is cancelled.
func New(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends a JSON request and decodes a 2xx JSON response into out.
// A 401 yields ErrUnauthorized, any other non-2xx an *APIError, and a
// transport failure an error wrapping ErrUnavailable. Nothing is retried.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	for _, hook := range c.before {
		if err := hook(req); err != nil {
			return fmt.Errorf("prepare %s %s: %w", method, path, err)
		}
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		c.log.Warn(ctx, "api request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", req.Header.Get(common.RequestIDHeaderName),
	)

	for _, hook := range c.after {
		if err := hook(resp); err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *HTTPClient) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *HTTPClient) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *HTTPClient) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

func (c *HTTPClient) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Ping checks that the API answers at all.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.Do(ctx, http.MethodGet, "/health", nil, nil)
}

// Path joins escaped segments into "/a/b/c".
func Path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// WithQuery appends encoded, non-empty query values to path.
func WithQuery(path string, q url.Values) string {
	for k, v := range q {
		if len(v) == 0 || (len(v) == 1 && v[0] == "") {
			q.Del(k)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
