package auth

import (
	"net/http"

	"github.com/scribehub/go-scribe/errcode"
)

var (
	// ErrLoginFailed marks rejected credentials.
	ErrLoginFailed = errcode.New(
		errcode.ModuleAuth, 1,
		"auth", "error.auth.login_failed", "login failed",
		http.StatusUnauthorized,
	)

	// ErrTokenMalformed marks an access token the client cannot parse.
	ErrTokenMalformed = errcode.New(
		errcode.ModuleAuth, 2,
		"auth", "error.auth.token_malformed", "access token malformed",
		http.StatusUnauthorized,
	)

	// ErrNotAuthenticated marks an operation that needs a session.
	ErrNotAuthenticated = errcode.New(
		errcode.ModuleAuth, 3,
		"auth", "error.auth.not_authenticated", "not authenticated",
		http.StatusUnauthorized,
	)
)
