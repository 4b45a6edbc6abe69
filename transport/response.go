package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Response wraps an HTTP response with the body already read.
type Response struct {
	StatusCode  int
	Status      string
	Headers     http.Header
	Body        []byte
	RawResponse *http.Response

	Duration time.Duration
	Attempts int
}

// apiEnvelope is the platform's error envelope: {"success":false,"error":"..."}.
type apiEnvelope struct {
	Success *bool           `json:"success"`
	Error   json.RawMessage `json:"error"`
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsClientError reports a 4xx status.
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError reports a 5xx status.
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}

// JSON deserializes the body.
func (r *Response) JSON(v interface{}) error {
	if v == nil {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// String returns the body as a string.
func (r *Response) String() string {
	return string(r.Body)
}

// Bytes returns the raw body.
func (r *Response) Bytes() []byte {
	return r.Body
}

// APIError surfaces a {success:false, error} envelope as an error, even on
// a 2xx status. Returns nil when the envelope is absent or success is true.
func (r *Response) APIError() error {
	var env apiEnvelope
	if err := json.Unmarshal(r.Body, &env); err != nil {
		return nil
	}
	if env.Success == nil || *env.Success {
		return nil
	}

	msg := "api error"
	var asString string
	if err := json.Unmarshal(env.Error, &asString); err == nil && asString != "" {
		msg = asString
	} else {
		var asObject struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(env.Error, &asObject); err == nil && asObject.Message != "" {
			msg = asObject.Message
		}
	}
	return ErrAPI.WithMsg(msg).WithData("status", r.StatusCode)
}

// Close closes the underlying response body.
func (r *Response) Close() error {
	if r.RawResponse != nil && r.RawResponse.Body != nil {
		return r.RawResponse.Body.Close()
	}
	return nil
}

// newResponse reads and wraps an http.Response.
func newResponse(httpResp *http.Response) (*Response, error) {
	if httpResp == nil {
		return nil, nil
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode:  httpResp.StatusCode,
		Status:      httpResp.Status,
		Headers:     httpResp.Header,
		Body:        body,
		RawResponse: httpResp,
	}, nil
}
