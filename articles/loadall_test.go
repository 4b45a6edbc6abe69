package articles

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribehub/go-scribe/event"
	"github.com/scribehub/go-scribe/fetchcache"
	"github.com/scribehub/go-scribe/logger"
	"github.com/scribehub/go-scribe/transport"
)

// loadAllFixture serves a 25-item collection in pages, so a page size of
// 10 yields 3 pages.
func loadAllFixture(t *testing.T, pageSize, maxPages int, total int, calls *int64) *Service {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

		start := (page - 1) * size
		var items []map[string]any
		for i := start; i < start+size && i < total; i++ {
			items = append(items, map[string]any{
				"id":         fmt.Sprintf("a-%03d", i),
				"created_at": fmt.Sprintf("2024-01-%02dT00:00:00Z", i%27+1),
			})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"items":      items,
				"pagination": map[string]any{"page": page, "total": total},
			},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := fetchcache.DefaultConfig()
	cfg.LoadAllPageSize = pageSize
	cfg.LoadAllMaxPages = maxPages
	cache := fetchcache.NewOrchestrator(cfg, fetchcache.NewMemoryStore("test", 100), logger.Nop())
	t.Cleanup(func() { cache.Close() })

	dispatcher := event.NewDispatcher(event.WithLogger(logger.Nop()))
	t.Cleanup(func() { dispatcher.Close() })

	client := transport.NewClient(transport.WithBaseURL(srv.URL))
	return NewService(client, cache, dispatcher, logger.Nop())
}

func TestLoadAll_MergesAllPages(t *testing.T) {
	var calls int64
	service := loadAllFixture(t, 10, 50, 25, &calls)

	result, err := service.LoadAll(context.Background(), ListOptions{AuthorID: "u-1"})
	require.NoError(t, err)

	assert.Len(t, result.Items, 25)
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls), "25 items at 10 per page is 3 fetches")

	// Merged collection is recency sorted.
	for i := 1; i < len(result.Items); i++ {
		prev := result.Items[i-1].CreatedAt.Time
		curr := result.Items[i].CreatedAt.Time
		assert.False(t, prev.Before(curr), "items must be sorted descending")
	}
}

func TestLoadAll_SharedCacheSlot(t *testing.T) {
	var calls int64
	service := loadAllFixture(t, 10, 50, 25, &calls)
	ctx := context.Background()

	_, err := service.LoadAll(ctx, ListOptions{AuthorID: "u-1"})
	require.NoError(t, err)
	fetched := atomic.LoadInt64(&calls)

	// A second session reuses the one _ALL slot, no new fetches.
	_, err = service.LoadAll(ctx, ListOptions{AuthorID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, fetched, atomic.LoadInt64(&calls))
}

func TestLoadAll_RespectsPageCap(t *testing.T) {
	var calls int64
	service := loadAllFixture(t, 10, 2, 100, &calls)

	result, err := service.LoadAll(context.Background(), ListOptions{})
	require.NoError(t, err)

	assert.Len(t, result.Items, 20, "the cap stops the session at 2 pages")
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestLoadAll_PageFailureFailsSession(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"items":      []map[string]any{{"id": "a-1"}},
				"pagination": map[string]any{"page": page, "total": 30},
			},
		})
	}))
	defer srv.Close()

	cfg := fetchcache.DefaultConfig()
	cfg.LoadAllPageSize = 10
	cache := fetchcache.NewOrchestrator(cfg, fetchcache.NewMemoryStore("test", 100), logger.Nop())
	defer cache.Close()
	client := transport.NewClient(transport.WithBaseURL(srv.URL))
	service := NewService(client, cache, nil, logger.Nop())

	_, err := service.LoadAll(context.Background(), ListOptions{})
	require.Error(t, err, "a failed page must fail the whole session")

	// And the partial collection was not cached.
	before := atomic.LoadInt64(&calls)
	_, err = service.LoadAll(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.Greater(t, atomic.LoadInt64(&calls), before)
}

func TestPaginate(t *testing.T) {
	items := make([]fetchcache.Item, 25)
	for i := range items {
		items[i] = fetchcache.Item{ID: fmt.Sprintf("a-%02d", i)}
	}
	all := &fetchcache.Result{Items: items, Page: 1}

	page1 := Paginate(all, 1, 12)
	assert.Len(t, page1.Items, 12)
	assert.Equal(t, "a-00", page1.Items[0].ID)
	assert.Equal(t, 25, page1.Total)

	page3 := Paginate(all, 3, 12)
	assert.Len(t, page3.Items, 1)
	assert.Equal(t, "a-24", page3.Items[0].ID)

	empty := Paginate(all, 9, 12)
	assert.Empty(t, empty.Items)
}
