package articles

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/scribehub/go-scribe/fetchcache"
	"github.com/scribehub/go-scribe/validator"
)

// loadAllWorkers bounds the page fetch fan-out.
const loadAllWorkers = 4

// LoadAll fetches the whole collection page by page, up to the safety
// cap, through one shared cache slot. Callers paginate the returned
// result client-side with Paginate.
func (s *Service) LoadAll(ctx context.Context, opts ListOptions) (*fetchcache.Result, error) {
	if err := validator.ValidateRequest(opts); err != nil {
		return nil, err
	}

	key := fetchcache.Key{
		Subject:  opts.AuthorID,
		Category: opts.Category,
		Status:   opts.Status,
		Sort:     opts.Sort,
		LoadAll:  true,
	}
	return s.cache.FetchCollection(ctx, key, fetchcache.FetchOptions{}, func(ctx context.Context) ([]byte, error) {
		return s.fetchAllPages(ctx, opts)
	})
}

// Paginate slices a load-all result into one client-side page.
func Paginate(result *fetchcache.Result, page, pageSize int) *fetchcache.Result {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = fetchcache.DefaultPageSize
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	items := result.Items
	if start >= len(items) {
		items = []fetchcache.Item{}
	} else {
		if end > len(items) {
			end = len(items)
		}
		items = items[start:end]
	}

	return &fetchcache.Result{
		Items: items,
		Page:  page,
		Total: len(result.Items),
	}
}

// fetchAllPages pulls pages until the collection is exhausted or the cap
// hits, and re-emits the merged items as one top-level array.
func (s *Service) fetchAllPages(ctx context.Context, opts ListOptions) ([]byte, error) {
	cfg := s.cache.Config()
	pageSize := cfg.LoadAllPageSize
	maxPages := cfg.LoadAllMaxPages

	first, err := s.fetchNormalizedPage(ctx, opts, 1, pageSize)
	if err != nil {
		return nil, err
	}
	items := first.Items

	if first.Total > 0 {
		// Total known up front: fetch the remaining pages in parallel.
		totalPages := (first.Total + pageSize - 1) / pageSize
		if totalPages > maxPages {
			s.logger.WarnCtx(ctx, "load-all truncated at page cap",
				zap.Int("total_pages", totalPages), zap.Int("cap", maxPages))
			totalPages = maxPages
		}

		if totalPages > 1 {
			rest, err := s.fetchPagesConcurrently(ctx, opts, 2, totalPages, pageSize)
			if err != nil {
				return nil, err
			}
			items = append(items, rest...)
		}
	} else {
		// Total unknown: walk forward until a short page or the cap.
		for page := 2; len(items) > 0 && page <= maxPages; page++ {
			if len(items)%pageSize != 0 {
				break
			}
			result, err := s.fetchNormalizedPage(ctx, opts, page, pageSize)
			if err != nil {
				return nil, err
			}
			if len(result.Items) == 0 {
				break
			}
			items = append(items, result.Items...)
			if len(result.Items) < pageSize {
				break
			}
		}
	}

	return json.Marshal(items)
}

// fetchPagesConcurrently fans page fetches out over a bounded worker
// pool. Any page failure fails the whole session, partial collections
// are never cached.
func (s *Service) fetchPagesConcurrently(ctx context.Context, opts ListOptions, from, to, pageSize int) ([]fetchcache.Item, error) {
	pool, err := ants.NewPool(loadAllWorkers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	pages := make([][]fetchcache.Item, to-from+1)
	errs := make([]error, to-from+1)
	var wg sync.WaitGroup

	for page := from; page <= to; page++ {
		page := page
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			result, err := s.fetchNormalizedPage(ctx, opts, page, pageSize)
			if err != nil {
				errs[page-from] = err
				return
			}
			pages[page-from] = result.Items
		})
		if submitErr != nil {
			wg.Done()
			return nil, submitErr
		}
	}
	wg.Wait()

	var items []fetchcache.Item
	for i, pageItems := range pages {
		if errs[i] != nil {
			return nil, errs[i]
		}
		items = append(items, pageItems...)
	}
	return items, nil
}

func (s *Service) fetchNormalizedPage(ctx context.Context, opts ListOptions, page, pageSize int) (*fetchcache.Result, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
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

	raw, err := s.fetchRaw(ctx, "/api/articles", query)
	if err != nil {
		return nil, err
	}
	return fetchcache.Normalize(raw, fetchcache.NormalizeOptions{Page: page}), nil
}
