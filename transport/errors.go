package transport

import (
	"net/http"

	"github.com/scribehub/go-scribe/errcode"
)

// Error codes for the transport layer: 50xxxx.
const (
	errCodeRequestBuild = 1
	errCodeRequest      = 2
	errCodeStatus       = 3
	errCodeDecode       = 4
	errCodeAPI          = 5
)

var (
	// ErrRequestBuild means the outgoing request could not be constructed.
	ErrRequestBuild = errcode.New(
		errcode.ModuleTransport, errCodeRequestBuild,
		"transport", "error.transport.request_build", "request build failed",
		http.StatusInternalServerError,
	)

	// ErrRequest means the HTTP round trip itself failed.
	ErrRequest = errcode.New(
		errcode.ModuleTransport, errCodeRequest,
		"transport", "error.transport.request", "http request failed",
		http.StatusBadGateway,
	)

	// ErrStatus means the server answered with a non-2xx status.
	ErrStatus = errcode.New(
		errcode.ModuleTransport, errCodeStatus,
		"transport", "error.transport.status", "unexpected http status",
		http.StatusBadGateway,
	)

	// ErrDecode means the response body could not be deserialized.
	ErrDecode = errcode.New(
		errcode.ModuleTransport, errCodeDecode,
		"transport", "error.transport.decode", "response decode failed",
		http.StatusBadGateway,
	)

	// ErrAPI means the server returned a {success:false, error} envelope.
	ErrAPI = errcode.New(
		errcode.ModuleTransport, errCodeAPI,
		"transport", "error.transport.api", "api error",
		http.StatusBadRequest,
	)
)
