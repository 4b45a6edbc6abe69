// Package transport is the REST client the SDK talks to the platform API
// with: base URL joining, bearer tokens, request IDs, retries on transient
// server failures, JSON envelope handling.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scribehub/go-scribe/retry"
)

// Client is the HTTP client.
type Client struct {
	httpClient *http.Client
	config     *config
}

// NewClient creates a client; options set the client-level defaults.
func NewClient(opts ...Option) *Client {
	cfg := newConfig()
	applyOptions(cfg, opts)

	if cfg.transport == nil {
		cfg.transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	httpClient := &http.Client{
		Timeout:   cfg.timeout,
		Transport: cfg.transport,
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
	}
}

// Do performs the request, applying retries when enabled.
func (c *Client) Do(ctx context.Context, req *Request, opts ...Option) (*Response, error) {
	reqCfg := newConfig()
	applyOptions(reqCfg, opts)
	finalCfg := c.config.merge(reqCfg)

	if ctx == nil {
		ctx = context.Background()
	}
	if finalCfg.ctx != nil {
		ctx = finalCfg.ctx
	}

	// Join baseURL for relative paths.
	fullURL := req.URL
	if finalCfg.baseURL != "" && !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		fullURL = strings.TrimRight(finalCfg.baseURL, "/") + "/" + strings.TrimLeft(req.URL, "/")
	}
	req.URL = fullURL

	for k, vs := range finalCfg.queries {
		for _, v := range vs {
			req.Query.Add(k, v)
		}
	}

	for k, v := range finalCfg.headers {
		if _, exists := req.Headers[k]; !exists {
			req.Headers[k] = v
		}
	}

	var resp *Response
	var err error
	startTime := time.Now()
	attempts := 1

	if finalCfg.retryEnabled && len(finalCfg.retryOpts) > 0 {
		err = retry.Do(ctx, func() error {
			resp, err = c.doRequest(ctx, req, finalCfg)
			if err != nil {
				return err
			}
			// 5xx and 429 are the retryable statuses.
			if resp.IsServerError() || resp.StatusCode == http.StatusTooManyRequests {
				return ErrStatus.WithMsgf("HTTP %d: %s", resp.StatusCode, resp.Status)
			}
			return nil
		}, finalCfg.retryOpts...)

		if multiErr, ok := err.(*retry.MultiError); ok {
			attempts = multiErr.Attempts
		}
	} else {
		resp, err = c.doRequest(ctx, req, finalCfg)
	}

	if err != nil {
		return nil, err
	}

	resp.Duration = time.Since(startTime)
	resp.Attempts = attempts

	if finalCfg.afterResponse != nil {
		if err := finalCfg.afterResponse(resp); err != nil {
			return resp, err
		}
	}

	return resp, nil
}

// doRequest executes one HTTP round trip.
func (c *Client) doRequest(ctx context.Context, req *Request, cfg *config) (*Response, error) {
	httpReq, err := req.buildHTTPRequest()
	if err != nil {
		return nil, ErrRequestBuild.Wrap(err)
	}

	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}
	httpReq = httpReq.WithContext(ctx)

	if cfg.tokenProvider != nil {
		if token := cfg.tokenProvider(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if cfg.requestID {
		httpReq.Header.Set("X-Request-ID", uuid.NewString())
	}

	if cfg.beforeRequest != nil {
		if err := cfg.beforeRequest(httpReq); err != nil {
			return nil, ErrRequestBuild.Wrapf(err, "before request hook failed")
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, ErrRequest.Wrap(err)
	}

	resp, err := newResponse(httpResp)
	if err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	return resp, nil
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, url string, opts ...Option) (*Response, error) {
	req := NewGetRequest(url)
	return c.Do(ctx, req, opts...)
}

// Post sends a POST request.
func (c *Client) Post(ctx context.Context, url string, opts ...Option) (*Response, error) {
	req := NewPostRequest(url)

	reqCfg := newConfig()
	applyOptions(reqCfg, opts)
	if reqCfg.body != nil {
		req.WithBody(reqCfg.body)
	}

	return c.Do(ctx, req, opts...)
}

// Put sends a PUT request.
func (c *Client) Put(ctx context.Context, url string, opts ...Option) (*Response, error) {
	req := NewPutRequest(url)

	reqCfg := newConfig()
	applyOptions(reqCfg, opts)
	if reqCfg.body != nil {
		req.WithBody(reqCfg.body)
	}

	return c.Do(ctx, req, opts...)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, opts ...Option) (*Response, error) {
	req := NewDeleteRequest(url)
	return c.Do(ctx, req, opts...)
}

// DoWithData executes the request and deserializes the response body.
// Non-2xx statuses and {success:false} envelopes come back as errors.
func DoWithData[T any](client *Client, ctx context.Context, req *Request, opts ...Option) (*T, error) {
	resp, err := client.Do(ctx, req, opts...)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	if apiErr := resp.APIError(); apiErr != nil {
		return nil, apiErr
	}
	if !resp.IsSuccess() {
		return nil, ErrStatus.WithMsgf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var result T
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	return &result, nil
}

// Get is the generic GET helper.
func Get[T any](client *Client, ctx context.Context, url string, opts ...Option) (*T, error) {
	req := NewGetRequest(url)
	return DoWithData[T](client, ctx, req, opts...)
}

// Post is the generic POST helper with a JSON payload.
func Post[T any](client *Client, ctx context.Context, url string, data interface{}, opts ...Option) (*T, error) {
	req := NewPostRequest(url)

	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, ErrRequestBuild.Wrapf(err, "marshal request data failed")
		}
		req.WithBody(bytes.NewReader(jsonData))
		req.WithHeader("Content-Type", "application/json")
	}

	return DoWithData[T](client, ctx, req, opts...)
}

// Put is the generic PUT helper with a JSON payload.
func Put[T any](client *Client, ctx context.Context, url string, data interface{}, opts ...Option) (*T, error) {
	req := NewPutRequest(url)

	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, ErrRequestBuild.Wrapf(err, "marshal request data failed")
		}
		req.WithBody(bytes.NewReader(jsonData))
		req.WithHeader("Content-Type", "application/json")
	}

	return DoWithData[T](client, ctx, req, opts...)
}
