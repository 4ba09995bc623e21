// Package api wraps outbound HTTP calls to the backend: base address, JSON and
// multipart encoding, bearer-token injection, and detection of
// session-invalidating 401 responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"parkdesk.app/internal/credstore"
	"parkdesk.app/internal/obs"
)

const requestIDHeader = "X-Request-Id"

// Client issues authenticated requests against the backend API.
//
// The bearer token is read from the credential store on every call rather than
// cached at construction: sign-in and sign-out change it between requests.
type Client struct {
	baseURL string
	http    *http.Client
	creds   credstore.Store
	log     zerolog.Logger

	mu             sync.Mutex
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying transport (tests, custom timeouts).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the transport-level request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a client for the given base URL and credential store.
func New(baseURL string, creds credstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		creds:   creds,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnUnauthorized registers the session-invalidated callback. At most one
// callback is active; the last registration wins.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// Get issues a GET request. Query may be nil; out may be nil to discard the body.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

// Post issues a JSON POST request.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	reader, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, reader, "application/json", out)
}

// Patch issues a JSON PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	reader, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, path, nil, reader, "application/json", out)
}

// Put issues a JSON PUT request.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	reader, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, nil, reader, "application/json", out)
}

// Delete issues a DELETE request with an optional JSON body.
func (c *Client) Delete(ctx context.Context, path string, body, out any) error {
	reader, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, reader, "application/json", out)
}

// FormFile is a file attachment for multipart uploads.
type FormFile struct {
	Field   string
	Name    string
	Content []byte
}

// PostMultipart issues a multipart/form-data POST request.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FormFile, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.Content); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, &buf, mw.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	token, err := c.creds.Read()
	if err != nil {
		// Storage failure degrades to an unauthenticated request.
		c.log.Warn().Err(err).Msg("credential read failed")
		token = ""
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	done := obs.ClientRequestStart(method)
	resp, err := c.http.Do(req)
	if err != nil {
		done(0)
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	done(resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("backend request")

	if resp.StatusCode >= 400 {
		reqErr := newRequestError(resp.StatusCode, data)
		if reqErr.sessionInvalidated() {
			c.invalidateSession()
		}
		return reqErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("api: decode response: %w", err)
		}
	}
	return nil
}

// invalidateSession clears the stored credential and fires the registered
// callback. Any in-flight request can trigger a global logout this way; the
// caller still receives the original error.
func (c *Client) invalidateSession() {
	if err := c.creds.Clear(); err != nil {
		c.log.Warn().Err(err).Msg("credential clear failed")
	}
	c.mu.Lock()
	fn := c.onUnauthorized
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func jsonBody(v any) (io.Reader, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("api: encode request body: %w", err)
	}
	return bytes.NewReader(data), nil
}
