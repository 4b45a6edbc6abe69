package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/scribehub/go-scribe/retry"
)

// TokenProvider supplies the current bearer token, empty when logged out.
type TokenProvider func() string

// config is the merged client/request configuration.
type config struct {
	// client level
	baseURL       string
	timeout       time.Duration
	transport     http.RoundTripper
	headers       map[string]string
	tokenProvider TokenProvider
	requestID     bool

	// request level
	ctx          context.Context
	queries      url.Values
	body         io.Reader
	retryOpts    []retry.Option
	retryEnabled bool

	// hooks
	beforeRequest func(*http.Request) error
	afterResponse func(*Response) error
}

// Option mutates the configuration.
type Option func(*config)

// WithBaseURL sets the base URL prepended to relative paths.
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(duration time.Duration) Option {
	return func(c *config) {
		c.timeout = duration
	}
}

// WithHeader sets one default header.
func WithHeader(key, value string) Option {
	return func(c *config) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

// WithHeaders sets several default headers.
func WithHeaders(headers map[string]string) Option {
	return func(c *config) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithTransport sets a custom RoundTripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *config) {
		c.transport = rt
	}
}

// WithTokenProvider injects Authorization: Bearer <token> on every request
// while the provider returns a non-empty token.
func WithTokenProvider(p TokenProvider) Option {
	return func(c *config) {
		c.tokenProvider = p
	}
}

// WithRequestID stamps every request with a fresh X-Request-ID.
func WithRequestID() Option {
	return func(c *config) {
		c.requestID = true
	}
}

// WithContext overrides the request context.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		c.ctx = ctx
	}
}

// WithQuery sets one query parameter.
func WithQuery(key, value string) Option {
	return func(c *config) {
		if c.queries == nil {
			c.queries = make(url.Values)
		}
		c.queries.Set(key, value)
	}
}

// WithQueries adds several query parameters.
func WithQueries(queries url.Values) Option {
	return func(c *config) {
		if c.queries == nil {
			c.queries = make(url.Values)
		}
		for k, vs := range queries {
			for _, v := range vs {
				c.queries.Add(k, v)
			}
		}
	}
}

// WithBody sets the raw request body.
func WithBody(reader io.Reader) Option {
	return func(c *config) {
		c.body = reader
	}
}

// WithRetry enables retrying with explicit options.
func WithRetry(opts ...retry.Option) Option {
	return func(c *config) {
		c.retryEnabled = true
		c.retryOpts = opts
	}
}

// WithRetryDefaults enables the standard HTTP retry policy.
func WithRetryDefaults() Option {
	return func(c *config) {
		c.retryEnabled = true
		c.retryOpts = retry.HTTPDefaults
	}
}

// DisableRetry turns retrying off for one request.
func DisableRetry() Option {
	return func(c *config) {
		c.retryEnabled = false
		c.retryOpts = nil
	}
}

// WithBeforeRequest sets a pre-send hook.
func WithBeforeRequest(fn func(*http.Request) error) Option {
	return func(c *config) {
		c.beforeRequest = fn
	}
}

// WithAfterResponse sets a post-receive hook.
func WithAfterResponse(fn func(*Response) error) Option {
	return func(c *config) {
		c.afterResponse = fn
	}
}

func newConfig() *config {
	return &config{
		timeout: 30 * time.Second,
		headers: make(map[string]string),
		queries: make(url.Values),
	}
}

func applyOptions(cfg *config, opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
}

// merge overlays request-level configuration on the client-level one.
func (c *config) merge(other *config) *config {
	merged := &config{
		baseURL:       c.baseURL,
		timeout:       c.timeout,
		transport:     c.transport,
		headers:       make(map[string]string),
		queries:       make(url.Values),
		tokenProvider: c.tokenProvider,
		requestID:     c.requestID,
		retryEnabled:  c.retryEnabled,
		retryOpts:     c.retryOpts,
		beforeRequest: c.beforeRequest,
		afterResponse: c.afterResponse,
	}

	for k, v := range c.headers {
		merged.headers[k] = v
	}
	for k, v := range other.headers {
		merged.headers[k] = v
	}

	for k, vs := range c.queries {
		for _, v := range vs {
			merged.queries.Add(k, v)
		}
	}
	for k, vs := range other.queries {
		for _, v := range vs {
			merged.queries.Add(k, v)
		}
	}

	if other.ctx != nil {
		merged.ctx = other.ctx
	}
	if other.body != nil {
		merged.body = other.body
	}
	if other.timeout > 0 {
		merged.timeout = other.timeout
	}
	if other.tokenProvider != nil {
		merged.tokenProvider = other.tokenProvider
	}
	if other.requestID {
		merged.requestID = true
	}

	if other.retryEnabled != c.retryEnabled || len(other.retryOpts) > 0 {
		merged.retryEnabled = other.retryEnabled
		merged.retryOpts = other.retryOpts
	}

	if other.beforeRequest != nil {
		merged.beforeRequest = other.beforeRequest
	}
	if other.afterResponse != nil {
		merged.afterResponse = other.afterResponse
	}

	return merged
}
