// Package redis implements Redis caching for Hifz Progress Hub.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUMMARY CACHE
// ══════════════════════════════════════════════════════════════════════════════

// SummaryCache stores progress summaries in Redis.
// It implements query.SummaryCache for the read side and
// command.SummaryInvalidator for the write side.
type SummaryCache struct {
	cache *Cache
}

// NewSummaryCache creates a new SummaryCache.
func NewSummaryCache(cache *Cache) *SummaryCache {
	return &SummaryCache{cache: cache}
}

// GetSummary returns a cached summary for a child.
// Returns query.ErrCacheMiss on a miss.
func (s *SummaryCache) GetSummary(ctx context.Context, childID string) (*query.ProgressSummaryDTO, error) {
	var summary query.ProgressSummaryDTO
	err := s.cache.Get(ctx, SummaryKey(childID), &summary)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, query.ErrCacheMiss
		}
		return nil, err
	}
	return &summary, nil
}

// SetSummary stores a summary with the given TTL.
func (s *SummaryCache) SetSummary(ctx context.Context, childID string, summary *query.ProgressSummaryDTO, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLSummaryCache
	}
	return s.cache.Set(ctx, SummaryKey(childID), summary, ttl)
}

// InvalidateSummary drops the cached summary for a child.
func (s *SummaryCache) InvalidateSummary(ctx context.Context, childID string) error {
	return s.cache.Delete(ctx, SummaryKey(childID))
}
