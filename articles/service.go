package articles

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/scribehub/go-scribe/event"
	"github.com/scribehub/go-scribe/fetchcache"
	"github.com/scribehub/go-scribe/logger"
	"github.com/scribehub/go-scribe/transport"
	"github.com/scribehub/go-scribe/validator"
)

// Service is the article data layer. Reads go through the cache, writes
// hit the API directly and dispatch invalidation events.
type Service struct {
	client *transport.Client
	cache  *fetchcache.Orchestrator
	events event.Dispatcher
	logger *logger.CtxZapLogger
}

// NewService wires the service. dispatcher may be nil for read-only use.
func NewService(client *transport.Client, cache *fetchcache.Orchestrator, dispatcher event.Dispatcher, log *logger.CtxZapLogger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		client: client,
		cache:  cache,
		events: dispatcher,
		logger: log,
	}
}

// List returns one page of articles through the cache.
func (s *Service) List(ctx context.Context, opts ListOptions) (*fetchcache.Result, error) {
	if err := validator.ValidateRequest(opts); err != nil {
		return nil, err
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = s.cache.Config().PageSize
	}

	// Page size is deliberately not part of the key: callers varying only
	// the size share the slot, matching the listing behavior elsewhere.
	key := fetchcache.Key{
		Subject:  opts.AuthorID,
		Category: opts.Category,
		Status:   opts.Status,
		Sort:     opts.Sort,
		Page:     opts.Page,
	}
	return s.cache.FetchCollection(ctx, key, fetchcache.FetchOptions{}, func(ctx context.Context) ([]byte, error) {
		query := url.Values{}
		query.Set("page", strconv.Itoa(opts.Page))
		query.Set("page_size", strconv.Itoa(pageSize))
		if opts.AuthorID != "" {
			query.Set("author_id", opts.AuthorID)
		}
		if opts.Category != "" {
			query.Set("category_id", opts.Category)
		}
		if opts.Status != "" {
			query.Set("status", opts.Status)
		}
		if opts.Sort != "" {
			query.Set("sort", opts.Sort)
		}
		return s.fetchRaw(ctx, "/api/articles", query)
	})
}

// Search runs a relevance-ranked search through the cache.
func (s *Service) Search(ctx context.Context, opts SearchOptions) (*fetchcache.Result, error) {
	if err := validator.ValidateRequest(opts); err != nil {
		return nil, err
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}

	key := fetchcache.Key{
		Sort:   "relevance",
		Search: opts.Query,
		Page:   opts.Page,
	}
	return s.cache.FetchCollection(ctx, key, fetchcache.FetchOptions{Relevance: true}, func(ctx context.Context) ([]byte, error) {
		query := url.Values{}
		query.Set("q", opts.Query)
		query.Set("page", strconv.Itoa(opts.Page))
		return s.fetchRaw(ctx, "/api/articles/search", query)
	})
}

// Bookmarks returns one page of the user's bookmarked articles. A caller
// that already assembled the collection passes it as provided; it is
// returned untouched and never written to the cache.
func (s *Service) Bookmarks(ctx context.Context, userID string, page int, provided *fetchcache.Result) (*fetchcache.Result, error) {
	if page <= 0 {
		page = 1
	}
	key := fetchcache.Key{Subject: userID, Category: "bookmarks", Page: page}
	opts := fetchcache.FetchOptions{Provided: provided}
	return s.cache.FetchCollection(ctx, key, opts, func(ctx context.Context) ([]byte, error) {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		return s.fetchRaw(ctx, "/api/users/"+url.PathEscape(userID)+"/bookmarks", query)
	})
}

// Get fetches one article by id, bypassing the collection cache.
func (s *Service) Get(ctx context.Context, id string) (*Article, error) {
	resp, err := s.client.Get(ctx, "/api/articles/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound.WithMsgf("article %s not found", id)
	}
	if apiErr := resp.APIError(); apiErr != nil {
		return nil, apiErr
	}
	if !resp.IsSuccess() {
		return nil, transport.ErrStatus.WithMsgf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return decodeArticle(resp.Body)
}

// Create posts a new article and announces it.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Article, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	body, err := s.doMutation(ctx, transport.NewPostRequest("/api/articles").WithJSON(req))
	if err != nil {
		return nil, err
	}
	article, err := decodeArticle(body)
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, EventCreated, article.ID, article.AuthorID)
	return article, nil
}

// Update modifies an article and announces it.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Article, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	body, err := s.doMutation(ctx, transport.NewPutRequest("/api/articles/"+url.PathEscape(id)).WithJSON(req))
	if err != nil {
		return nil, err
	}
	article, err := decodeArticle(body)
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, EventUpdated, article.ID, article.AuthorID)
	return article, nil
}

// Delete removes an article. The author id is supplied by the caller, the
// delete response does not carry one.
func (s *Service) Delete(ctx context.Context, id, authorID string) error {
	if _, err := s.doMutation(ctx, transport.NewDeleteRequest("/api/articles/"+url.PathEscape(id))); err != nil {
		return err
	}
	s.dispatch(ctx, EventDeleted, id, authorID)
	return nil
}

// Like adds the current user's like to the article.
func (s *Service) Like(ctx context.Context, articleID, authorID string) error {
	return s.react(ctx, http.MethodPost, articleID, "like", authorID)
}

// Unlike withdraws a like.
func (s *Service) Unlike(ctx context.Context, articleID, authorID string) error {
	return s.react(ctx, http.MethodDelete, articleID, "like", authorID)
}

// Dislike adds a dislike.
func (s *Service) Dislike(ctx context.Context, articleID, authorID string) error {
	return s.react(ctx, http.MethodPost, articleID, "dislike", authorID)
}

// Undislike withdraws a dislike.
func (s *Service) Undislike(ctx context.Context, articleID, authorID string) error {
	return s.react(ctx, http.MethodDelete, articleID, "dislike", authorID)
}

// Bookmark saves the article into the user's bookmarks. The subject here
// is the bookmarking user, their bookmark listing is what goes stale.
func (s *Service) Bookmark(ctx context.Context, articleID, userID string) error {
	return s.react(ctx, http.MethodPost, articleID, "bookmark", userID)
}

// Unbookmark removes the article from the user's bookmarks.
func (s *Service) Unbookmark(ctx context.Context, articleID, userID string) error {
	return s.react(ctx, http.MethodDelete, articleID, "bookmark", userID)
}

// Follow subscribes the current user to an author.
func (s *Service) Follow(ctx context.Context, authorID string) error {
	_, err := s.doMutation(ctx, transport.NewPostRequest("/api/users/"+url.PathEscape(authorID)+"/follow"))
	return err
}

// Unfollow removes the subscription.
func (s *Service) Unfollow(ctx context.Context, authorID string) error {
	_, err := s.doMutation(ctx, transport.NewDeleteRequest("/api/users/"+url.PathEscape(authorID)+"/follow"))
	return err
}

// Tags lists the platform's tags.
func (s *Service) Tags(ctx context.Context) ([]Tag, error) {
	body, err := s.fetchRaw(ctx, "/api/tags", nil)
	if err != nil {
		return nil, err
	}

	raw := body
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && startsWith(env.Data, '[') {
		raw = env.Data
	}

	var tags []Tag
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, transport.ErrDecode.Wrap(err)
	}
	return tags, nil
}

// fetchRaw performs a GET and rejects on transport or API failure, so the
// cache's no-negative-caching path sees a hard error.
func (s *Service) fetchRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	opts := []transport.Option{}
	if len(query) > 0 {
		opts = append(opts, transport.WithQueries(query))
	}
	resp, err := s.client.Get(ctx, path, opts...)
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
}

// doMutation executes a write request with the shared error handling.
func (s *Service) doMutation(ctx context.Context, req *transport.Request) ([]byte, error) {
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if apiErr := resp.APIError(); apiErr != nil {
		return nil, apiErr
	}
	if !resp.IsSuccess() {
		return nil, transport.ErrStatus.WithMsgf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return resp.Body, nil
}

func (s *Service) react(ctx context.Context, method, articleID, reaction, subject string) error {
	path := "/api/articles/" + url.PathEscape(articleID) + "/" + reaction
	if _, err := s.doMutation(ctx, transport.NewRequest(method, path)); err != nil {
		return err
	}
	s.dispatch(ctx, EventReacted, articleID, subject)
	return nil
}

func (s *Service) dispatch(ctx context.Context, name, articleID, authorID string) {
	if s.events == nil {
		return
	}
	if err := s.events.Dispatch(ctx, newMutationEvent(name, articleID, authorID)); err != nil {
		s.logger.WarnCtx(ctx, "mutation event dispatch failed",
			zap.String("event", name), zap.Error(err))
	}
}

// decodeArticle accepts both a bare article object and a {data: {...}}
// envelope.
func decodeArticle(body []byte) (*Article, error) {
	raw := body
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && startsWith(env.Data, '{') {
		raw = env.Data
	}

	var article Article
	if err := json.Unmarshal(raw, &article); err != nil {
		return nil, transport.ErrDecode.Wrap(err)
	}
	return &article, nil
}

func startsWith(raw json.RawMessage, c byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == c
}
