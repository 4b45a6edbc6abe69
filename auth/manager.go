// Package auth holds the client session: login, logout, the bearer token
// the transport injects, and the cache reset a logout implies.
package auth

import (
	"context"
	"encoding/json"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.uber.org/zap"

	"github.com/scribehub/go-scribe/fetchcache"
	"github.com/scribehub/go-scribe/logger"
	"github.com/scribehub/go-scribe/transport"
	"github.com/scribehub/go-scribe/validator"
)

// LoginRequest carries the credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements validator.Validatable.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// Manager owns the session state. Safe for concurrent use.
type Manager struct {
	client *transport.Client
	cache  *fetchcache.Orchestrator
	logger *logger.CtxZapLogger

	mu     sync.RWMutex
	token  string
	claims *Claims
}

// NewManager wires the session manager. cache may be nil when no cached
// state needs clearing on logout.
func NewManager(client *transport.Client, cache *fetchcache.Orchestrator, log *logger.CtxZapLogger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		client: client,
		cache:  cache,
		logger: log,
	}
}

// SetClient attaches the transport after construction. The manager and
// the client reference each other (the client reads the session token),
// so one of the two links is set late.
func (m *Manager) SetClient(client *transport.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.client = client
}

// TokenProvider feeds the transport; it reads the live session token, so
// one client works across login and logout.
func (m *Manager) TokenProvider() transport.TokenProvider {
	return func() string {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.token
	}
}

// Login authenticates and stores the returned access token.
func (m *Manager) Login(ctx context.Context, req LoginRequest) (*Claims, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	resp, err := m.client.Do(ctx, transport.NewPostRequest("/api/auth/login").WithJSON(req))
	if err != nil {
		return nil, err
	}
	if apiErr := resp.APIError(); apiErr != nil {
		return nil, ErrLoginFailed.Wrap(apiErr)
	}
	if !resp.IsSuccess() {
		return nil, ErrLoginFailed.WithMsgf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	token := extractToken(resp.Body)
	if token == "" {
		return nil, ErrLoginFailed.WithMsg("login response carries no token")
	}
	claims, err := ParseToken(token)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.token = token
	m.claims = claims
	m.mu.Unlock()

	m.logger.InfoCtx(ctx, "logged in", zap.String("subject", claims.Subject))
	return claims, nil
}

// Logout ends the session server-side, drops the token, and clears every
// cached collection, they all belong to the old identity.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	hadSession := m.token != ""
	m.mu.Unlock()

	if hadSession {
		// Best effort, the local session ends either way.
		if _, err := m.client.Post(ctx, "/api/auth/logout"); err != nil {
			m.logger.WarnCtx(ctx, "server-side logout failed", zap.Error(err))
		}
	}

	m.mu.Lock()
	m.token = ""
	m.claims = nil
	m.mu.Unlock()

	if m.cache != nil {
		if err := m.cache.Clear(ctx); err != nil {
			return err
		}
	}
	m.logger.InfoCtx(ctx, "logged out")
	return nil
}

// Claims returns the current session claims, or nil when logged out.
func (m *Manager) Claims() *Claims {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.claims
}

// IsAuthenticated reports whether a non-expired session exists.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.claims != nil && !m.claims.IsExpired()
}

// UserID returns the session subject, or ErrNotAuthenticated.
func (m *Manager) UserID() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.claims == nil {
		return "", ErrNotAuthenticated
	}
	return m.claims.Subject, nil
}

// extractToken accepts the token envelope variants the API emits.
func extractToken(body []byte) string {
	var envelope struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
		Data        *struct {
			Token       string `json:"token"`
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	switch {
	case envelope.Token != "":
		return envelope.Token
	case envelope.AccessToken != "":
		return envelope.AccessToken
	case envelope.Data != nil && envelope.Data.Token != "":
		return envelope.Data.Token
	case envelope.Data != nil:
		return envelope.Data.AccessToken
	}
	return ""
}
