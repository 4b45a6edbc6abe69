// Package admin is the dashboard data layer: user listings read through
// the shared cache under one "users" subject, moderation writes
// invalidate it.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/scribehub/go-scribe/errcode"
	"github.com/scribehub/go-scribe/fetchcache"
	"github.com/scribehub/go-scribe/logger"
	"github.com/scribehub/go-scribe/transport"
)

// usersSubject keys every cached user listing, so one invalidation
// covers all pages and filters.
const usersSubject = "users"

// Roles the platform knows.
const (
	RoleUser   = "user"
	RoleAuthor = "author"
	RoleAdmin  = "admin"
)

var (
	// ErrUserNotFound marks a missing user.
	ErrUserNotFound = errcode.New(
		errcode.ModuleAdmin, 1,
		"admin", "error.admin.user_not_found", "user not found",
		http.StatusNotFound,
	)

	// ErrInvalidRole marks an unknown role value.
	ErrInvalidRole = errcode.New(
		errcode.ModuleAdmin, 2,
		"admin", "error.admin.invalid_role", "invalid role",
		http.StatusBadRequest,
	)
)

// User is one account as the admin API reports it.
type User struct {
	ID        string               `json:"id"`
	Username  string               `json:"username"`
	Email     string               `json:"email"`
	Role      string               `json:"role"`
	Status    string               `json:"status"`
	CreatedAt fetchcache.Timestamp `json:"created_at"`
}

// Service is the admin data layer.
type Service struct {
	client *transport.Client
	cache  *fetchcache.Orchestrator
	logger *logger.CtxZapLogger
}

// NewService wires the service.
func NewService(client *transport.Client, cache *fetchcache.Orchestrator, log *logger.CtxZapLogger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{client: client, cache: cache, logger: log}
}

// ListUsers returns one page of accounts through the cache.
func (s *Service) ListUsers(ctx context.Context, page int, status string) (*fetchcache.Result, error) {
	if page <= 0 {
		page = 1
	}
	key := fetchcache.Key{Subject: usersSubject, Status: status, Page: page}
	return s.cache.FetchCollection(ctx, key, fetchcache.FetchOptions{}, func(ctx context.Context) ([]byte, error) {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		if status != "" {
			query.Set("status", status)
		}
		resp, err := s.client.Get(ctx, "/api/admin/users", transport.WithQueries(query))
		if err != nil {
			return nil, err
		}
		if apiErr := resp.APIError(); apiErr != nil {
			return nil, apiErr
		}
		if !resp.IsSuccess() {
			return nil, transport.ErrStatus.WithMsgf("HTTP %d: %s", resp.StatusCode, resp.Status)
		}
		return resp.Body, nil
	})
}

// GetUser fetches one account, bypassing the cache.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	resp, err := s.client.Get(ctx, "/api/admin/users/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound.WithMsgf("user %s not found", id)
	}
	if apiErr := resp.APIError(); apiErr != nil {
		return nil, apiErr
	}
	if !resp.IsSuccess() {
		return nil, transport.ErrStatus.WithMsgf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	raw := resp.Body
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &env); err == nil && len(env.Data) > 0 {
		raw = env.Data
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, transport.ErrDecode.Wrap(err)
	}
	return &user, nil
}

// Ban suspends an account.
func (s *Service) Ban(ctx context.Context, userID string) error {
	return s.moderate(ctx, transport.NewPostRequest("/api/admin/users/"+url.PathEscape(userID)+"/ban"))
}

// Unban lifts a suspension.
func (s *Service) Unban(ctx context.Context, userID string) error {
	return s.moderate(ctx, transport.NewDeleteRequest("/api/admin/users/"+url.PathEscape(userID)+"/ban"))
}

// SetRole changes an account's role.
func (s *Service) SetRole(ctx context.Context, userID, role string) error {
	if err := validation.Validate(role, validation.Required, validation.In(RoleUser, RoleAuthor, RoleAdmin)); err != nil {
		return ErrInvalidRole.WithMsgf("invalid role %q", role)
	}
	req := transport.NewPutRequest("/api/admin/users/" + url.PathEscape(userID) + "/role").
		WithJSON(map[string]string{"role": role})
	return s.moderate(ctx, req)
}

// moderate runs a moderation write and invalidates the user listings.
func (s *Service) moderate(ctx context.Context, req *transport.Request) error {
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	if apiErr := resp.APIError(); apiErr != nil {
		return apiErr
	}
	if !resp.IsSuccess() {
		return transport.ErrStatus.WithMsgf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return s.cache.InvalidateSubject(ctx, usersSubject)
}
