package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribehub/go-scribe/articles"
	"github.com/scribehub/go-scribe/event"
	"github.com/scribehub/go-scribe/fetchcache"
	"github.com/scribehub/go-scribe/logger"
	"github.com/scribehub/go-scribe/transport"
)

func newStatsFixture(t *testing.T, calls *int64) (*Service, event.Dispatcher) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"items": []map[string]any{
					{"id": "a-1", "status": "published", "views": 100, "likes": 10, "created_at": "2024-01-01"},
					{"id": "a-2", "status": "published", "views": 50, "likes": 5, "created_at": "2024-02-01"},
					{"id": "a-3", "status": "draft", "views": 0, "likes": 0, "created_at": "2024-03-01"},
				},
				"pagination": map[string]any{"page": 1, "total": 3},
			},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := fetchcache.DefaultConfig()
	cfg.InvalidateOn = articles.MutationEvents
	cache := fetchcache.NewOrchestrator(cfg, fetchcache.NewMemoryStore("test", 100), logger.Nop())
	t.Cleanup(func() { cache.Close() })

	dispatcher := event.NewDispatcher(event.WithLogger(logger.Nop()))
	t.Cleanup(func() { dispatcher.Close() })
	cache.BindInvalidation(dispatcher)

	client := transport.NewClient(transport.WithBaseURL(srv.URL))
	articleService := articles.NewService(client, cache, dispatcher, logger.Nop())
	return NewService(articleService, logger.Nop()), dispatcher
}

func TestAuthorStats_Aggregation(t *testing.T) {
	var calls int64
	service, _ := newStatsFixture(t, &calls)

	stats, err := service.AuthorStats(context.Background(), "u-1")
	require.NoError(t, err)

	assert.Equal(t, "u-1", stats.AuthorID)
	assert.Equal(t, 3, stats.Articles)
	assert.Equal(t, int64(150), stats.Views)
	assert.Equal(t, int64(15), stats.Likes)
	assert.Equal(t, 2, stats.ByStatus["published"])
	assert.Equal(t, 1, stats.ByStatus["draft"])
}

func TestAuthorStats_CachedWithinTTL(t *testing.T) {
	var calls int64
	service, _ := newStatsFixture(t, &calls)
	ctx := context.Background()

	_, err := service.AuthorStats(ctx, "u-1")
	require.NoError(t, err)
	_, err = service.AuthorStats(ctx, "u-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "stats recomputation reuses the cached collection")
}

func TestAuthorStats_MutationEventRefreshes(t *testing.T) {
	var calls int64
	service, dispatcher := newStatsFixture(t, &calls)
	ctx := context.Background()

	_, err := service.AuthorStats(ctx, "u-1")
	require.NoError(t, err)

	err = dispatcher.Dispatch(ctx, articleMutated("u-1"))
	require.NoError(t, err)

	_, err = service.AuthorStats(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

type mutationEvent struct {
	event.BaseEvent
	authorID string
}

func (e mutationEvent) Subject() string { return e.authorID }

func articleMutated(authorID string) mutationEvent {
	return mutationEvent{BaseEvent: event.NewEvent(articles.EventUpdated), authorID: authorID}
}
