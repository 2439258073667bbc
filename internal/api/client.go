package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Transport is the raw request surface shared by every endpoint helper.
// Payloads are the decoded JSON body with no envelope assumptions.
type Transport interface {
	Get(ctx context.Context, path string) (any, error)
	Post(ctx context.Context, path string, body any) (any, error)
}

// Ensure Client implements Transport at compile time.
var _ Transport = (*Client)(nil)

// Client talks to the IoT backend HTTP API.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	userAgent  string
	credential *Credential
	limit      *rate.Limiter
	log        *zap.Logger
}

const (
	defaultBaseURL   = "http://127.0.0.1:8000"
	defaultUserAgent = "iotdash/0.1"
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 64 * 1024
)

// Option customizes a Client.
type Option func(c *Client) error

// WithCredential attaches the session credential used for the bearer header.
func WithCredential(cred *Credential) Option {
	return func(c *Client) error {
		c.credential = cred
		return nil
	}
}

// WithTimeout overrides the fixed per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		c.http.Timeout = d
		return nil
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) error {
		if perSecond < 0 {
			return fmt.Errorf("rate limit must not be negative, got %v", perSecond)
		}
		if perSecond == 0 {
			c.limit = nil
			return nil
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limit = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.log = l
		}
		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client is nil")
		}
		c.http = hc
		return nil
	}
}

// NewClient builds a Client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Get issues a GET request and returns the decoded body.
func (c *Client) Get(ctx context.Context, path string) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (any, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.credential != nil {
		header, err := c.credential.Header(time.Now())
		if err != nil {
			return nil, err
		}
		if header != "" {
			req.Header.Set("Authorization", header)
		}
	}

	if c.limit != nil {
		if err := c.limit.Wait(ctx); err != nil {
			return nil, fmt.Errorf("await rate limit: %w", err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &Error{
			Method:  method,
			Path:    rel.String(),
			Status:  resp.StatusCode,
			Message: serverMessage(raw),
		}
		c.log.Warn("api error",
			zap.String("method", method),
			zap.String("path", apiErr.Path),
			zap.Int("status", apiErr.Status),
			zap.String("message", apiErr.Message),
		)
		return nil, apiErr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		// A non-JSON success body carries no records; the views show "no data".
		c.log.Debug("ignoring non-JSON response body",
			zap.String("method", method),
			zap.String("path", rel.String()),
			zap.Int("bytes", len(raw)),
			zap.Error(err),
		)
		return nil, nil
	}
	return payload, nil
}

// pagePath renders a paged endpoint path with page and page_size.
func pagePath(path string, page, size int) string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	values.Set("page_size", strconv.Itoa(size))
	return path + "?" + values.Encode()
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api base %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
