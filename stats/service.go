// Package stats derives author statistics from the cached article
// collections, so dashboards do not re-hit the listing endpoints.
package stats

import (
	"context"

	"go.uber.org/zap"

	"github.com/scribehub/go-scribe/articles"
	"github.com/scribehub/go-scribe/logger"
)

// AuthorStats aggregates one author's collection.
type AuthorStats struct {
	AuthorID string         `json:"author_id"`
	Articles int            `json:"articles"`
	Views    int64          `json:"views"`
	Likes    int64          `json:"likes"`
	ByStatus map[string]int `json:"by_status"`
}

// Service computes statistics over the article layer.
type Service struct {
	articles *articles.Service
	logger   *logger.CtxZapLogger
}

// NewService wires the service.
func NewService(articleService *articles.Service, log *logger.CtxZapLogger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{articles: articleService, logger: log}
}

// AuthorStats aggregates totals and per-status counts for one author.
// The underlying collection comes through the shared cache, repeated
// calls inside the TTL window cost no network traffic.
func (s *Service) AuthorStats(ctx context.Context, authorID string) (*AuthorStats, error) {
	result, err := s.articles.LoadAll(ctx, articles.ListOptions{AuthorID: authorID})
	if err != nil {
		return nil, err
	}

	stats := &AuthorStats{
		AuthorID: authorID,
		Articles: len(result.Items),
		ByStatus: make(map[string]int),
	}
	for _, item := range result.Items {
		stats.Views += item.Views
		stats.Likes += item.Likes
		if item.Status != "" {
			stats.ByStatus[item.Status]++
		}
	}

	s.logger.DebugCtx(ctx, "author stats computed",
		zap.String("author_id", authorID), zap.Int("articles", stats.Articles))
	return stats, nil
}
