package service

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/cache"
	"github.com/kpmisthah/twaybastore-admin/internal/domain"
)

const (
	searchTermsKey    = "analytics:search-terms"
	pageVisitsKey     = "analytics:page-visits"
	categoryClicksKey = "analytics:category-clicks"

	analyticsTopN = 50
)

// AnalyticsService keeps lightweight behavioural counters in Redis
// sorted sets. It is advisory: recording failures are logged and
// swallowed so they can never break the request that triggered them.
type AnalyticsService struct {
	cache  *cache.Cache
	logger *zap.Logger
}

func NewAnalyticsService(c *cache.Cache, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		cache:  c,
		logger: logger,
	}
}

func (s *AnalyticsService) RecordSearch(ctx context.Context, term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return
	}
	s.incr(ctx, searchTermsKey, term)
}

func (s *AnalyticsService) RecordPageVisit(ctx context.Context, page string) {
	if page == "" {
		return
	}
	s.incr(ctx, pageVisitsKey, page)
}

func (s *AnalyticsService) RecordCategoryClick(ctx context.Context, category string) {
	if !domain.ValidCategory(category) {
		return
	}
	s.incr(ctx, categoryClicksKey, category)
}

func (s *AnalyticsService) TopSearches(ctx context.Context) ([]domain.CounterEntry, error) {
	return s.top(ctx, searchTermsKey)
}

func (s *AnalyticsService) TopPages(ctx context.Context) ([]domain.CounterEntry, error) {
	return s.top(ctx, pageVisitsKey)
}

func (s *AnalyticsService) CategoryClicks(ctx context.Context) ([]domain.CounterEntry, error) {
	return s.top(ctx, categoryClicksKey)
}

func (s *AnalyticsService) incr(ctx context.Context, key, member string) {
	if err := s.cache.Client().ZIncrBy(ctx, key, 1, member).Err(); err != nil {
		s.logger.Warn("Failed to record analytics event",
			zap.String("key", key),
			zap.String("member", member),
			zap.Error(err))
	}
}

func (s *AnalyticsService) top(ctx context.Context, key string) ([]domain.CounterEntry, error) {
	zs, err := s.cache.Client().ZRevRangeWithScores(ctx, key, 0, analyticsTopN-1).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	entries := make([]domain.CounterEntry, 0, len(zs))
	for _, z := range zs {
		name, _ := z.Member.(string)
		entries = append(entries, domain.CounterEntry{
			Name:  name,
			Count: int64(z.Score),
		})
	}
	return entries, nil
}
