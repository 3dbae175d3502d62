// Package api implements the HTTP client for the DevTinder REST API.
//
// Every call funnels through one request path with two uniform hooks: an
// outbound hook that attaches the bearer token and a request ID, and an
// inbound hook that reacts to 401/403 by evicting the durable session cache
// and redirecting, regardless of which operation triggered the call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout applies when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is kept on a StatusError.
const maxErrorBody = 4096

// TokenSource supplies the persisted bearer token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// SessionEvictor removes the durable session cache entry. The client calls it
// on 401/403 before propagating the error.
type SessionEvictor interface {
	EvictSession() error
}

type noToken struct{}

func (noToken) Token() (string, bool) { return "", false }

type noEvict struct{}

func (noEvict) EvictSession() error { return nil }

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Tokens supplies the bearer token for the outbound hook. Optional.
	Tokens TokenSource
	// Session is evicted on 401/403. Optional.
	Session SessionEvictor
	// Navigator receives the 401/403 redirects. Optional.
	Navigator Navigator
	Logger    *zap.Logger
}

// Client talks to the DevTinder API. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	session SessionEvictor
	nav     Navigator
	logger  *zap.Logger
}

// New creates a Client. Cookies are carried across calls so the server's
// session cookie authenticates requests alongside the bearer token.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}

	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Tokens == nil {
		opts.Tokens = noToken{}
	}
	if opts.Session == nil {
		opts.Session = noEvict{}
	}
	if opts.Navigator == nil {
		opts.Navigator = NopNavigator{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(base.String(), "/"),
		http: &http.Client{
			Timeout: opts.Timeout,
			Jar:     jar,
			Transport: &authTransport{
				next:   http.DefaultTransport,
				tokens: opts.Tokens,
			},
		},
		session: opts.Session,
		nav:     opts.Navigator,
		logger:  opts.Logger,
	}, nil
}

// authTransport is the outbound hook: it attaches the stored bearer token
// and a correlation ID to every request that leaves the client.
type authTransport struct {
	next   http.RoundTripper
	tokens TokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if token, ok := t.tokens.Token(); ok {
		clone.Header.Set("Authorization", "Bearer "+token)
	}
	clone.Header.Set("X-Request-ID", uuid.NewString())
	return t.next.RoundTrip(clone)
}

// RequestOption customizes a single call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	contentType string
	raw         io.Reader
}

// WithBody replaces the JSON-marshaled body with a raw reader and content
// type. Used for multipart submissions such as the profile photo upload.
func WithBody(r io.Reader, contentType string) RequestOption {
	return func(o *requestOptions) {
		o.raw = r
		o.contentType = contentType
	}
}

// Get performs a GET with optional query parameters, decoding into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST with a JSON body (or a raw body via WithBody).
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put performs a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPut, path, body, out, opts...)
}

// Patch performs a PATCH with a JSON body (or a raw body via WithBody).
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPatch, path, body, out, opts...)
}

// Delete performs a DELETE with no body.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	ro := requestOptions{contentType: "application/json"}
	for _, opt := range opts {
		opt(&ro)
	}

	var reader io.Reader
	switch {
	case ro.raw != nil:
		reader = ro.raw
	case body != nil:
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", ro.contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// No status at all: network failure or timeout. The caller decides
		// how to message it; nothing is evicted.
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		serr := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		c.intercept(method, path, serr)
		return serr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// intercept is the inbound hook. It runs for every non-2xx response before
// the error reaches the caller: 401 evicts the session cache and redirects
// to login, 403 evicts and redirects home. Callers cannot suppress it.
func (c *Client) intercept(method, path string, serr *StatusError) {
	switch serr.Code {
	case http.StatusUnauthorized:
		if err := c.session.EvictSession(); err != nil {
			c.logger.Warn("failed to evict session cache", zap.Error(err))
		}
		c.logger.Info("unauthorized response, redirecting to login",
			zap.String("method", method), zap.String("path", path))
		c.nav.ToLogin()
	case http.StatusForbidden:
		if err := c.session.EvictSession(); err != nil {
			c.logger.Warn("failed to evict session cache", zap.Error(err))
		}
		c.logger.Info("forbidden response, redirecting home",
			zap.String("method", method), zap.String("path", path))
		c.nav.ToHome()
	}
}
