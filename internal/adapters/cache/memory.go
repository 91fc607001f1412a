package cache

import (
	"context"
	"sync"
	"time"

	"github.com/luminacare/pipeline-service/internal/domain"
)

type memoryEntry struct {
	rows      []domain.AffiliateMetrics
	expiresAt time.Time
}

// MemoryLeaderboardCache is the in-process stand-in used when no Redis
// address is configured.
type MemoryLeaderboardCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	nowFn   func() time.Time
}

func NewMemoryLeaderboardCache() *MemoryLeaderboardCache {
	return &MemoryLeaderboardCache{
		entries: map[string]memoryEntry{},
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
}

func (c *MemoryLeaderboardCache) Get(_ context.Context, key string) ([]domain.AffiliateMetrics, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.nowFn().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]domain.AffiliateMetrics(nil), entry.rows...), true, nil
}

func (c *MemoryLeaderboardCache) Set(_ context.Context, key string, rows []domain.AffiliateMetrics, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{
		rows:      append([]domain.AffiliateMetrics(nil), rows...),
		expiresAt: c.nowFn().Add(ttl),
	}
	return nil
}
