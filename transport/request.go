package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request wraps an outgoing HTTP request.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   url.Values
	Body    io.Reader

	// bodyBytes caches the body so retries can replay it.
	bodyBytes []byte
}

// NewRequest creates a request for an arbitrary method.
func NewRequest(method, urlStr string) *Request {
	return &Request{
		Method:  method,
		URL:     urlStr,
		Headers: make(map[string]string),
		Query:   make(url.Values),
	}
}

// NewGetRequest creates a GET request.
func NewGetRequest(urlStr string) *Request {
	return NewRequest(http.MethodGet, urlStr)
}

// NewPostRequest creates a POST request.
func NewPostRequest(urlStr string) *Request {
	return NewRequest(http.MethodPost, urlStr)
}

// NewPutRequest creates a PUT request.
func NewPutRequest(urlStr string) *Request {
	return NewRequest(http.MethodPut, urlStr)
}

// NewDeleteRequest creates a DELETE request.
func NewDeleteRequest(urlStr string) *Request {
	return NewRequest(http.MethodDelete, urlStr)
}

// WithHeader sets one header.
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithQuery sets one query parameter.
func (r *Request) WithQuery(key, value string) *Request {
	r.Query.Set(key, value)
	return r
}

// WithBody sets a raw body, caching it for retries.
func (r *Request) WithBody(body io.Reader) *Request {
	r.Body = body
	if body != nil {
		if data, err := io.ReadAll(body); err == nil {
			r.bodyBytes = data
			r.Body = bytes.NewReader(data)
		}
	}
	return r
}

// WithJSON sets a JSON body and Content-Type.
func (r *Request) WithJSON(data interface{}) *Request {
	if data == nil {
		return r
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return r
	}

	r.bodyBytes = jsonData
	r.Body = bytes.NewReader(jsonData)
	r.Headers["Content-Type"] = "application/json"
	return r
}

// WithForm sets a form-encoded body and Content-Type.
func (r *Request) WithForm(data map[string]string) *Request {
	if data == nil {
		return r
	}

	formData := make(url.Values)
	for k, v := range data {
		formData.Set(k, v)
	}

	formStr := formData.Encode()
	r.bodyBytes = []byte(formStr)
	r.Body = strings.NewReader(formStr)
	r.Headers["Content-Type"] = "application/x-www-form-urlencoded"
	return r
}

// buildHTTPRequest materializes the http.Request, resetting the body so a
// retried request replays the same payload.
func (r *Request) buildHTTPRequest() (*http.Request, error) {
	fullURL := r.URL
	if len(r.Query) > 0 {
		if strings.Contains(fullURL, "?") {
			fullURL += "&" + r.Query.Encode()
		} else {
			fullURL += "?" + r.Query.Encode()
		}
	}

	var body io.Reader
	if len(r.bodyBytes) > 0 {
		body = bytes.NewReader(r.bodyBytes)
	} else if r.Body != nil {
		body = r.Body
	}

	req, err := http.NewRequest(r.Method, fullURL, body)
	if err != nil {
		return nil, err
	}

	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// Clone copies the request for independent reuse.
func (r *Request) Clone() *Request {
	clone := &Request{
		Method:    r.Method,
		URL:       r.URL,
		Headers:   make(map[string]string),
		Query:     make(url.Values),
		bodyBytes: r.bodyBytes,
	}

	for k, v := range r.Headers {
		clone.Headers[k] = v
	}
	for k, vs := range r.Query {
		for _, v := range vs {
			clone.Query.Add(k, v)
		}
	}
	if len(r.bodyBytes) > 0 {
		clone.Body = bytes.NewReader(r.bodyBytes)
	}
	return clone
}
