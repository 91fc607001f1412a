package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/luminacare/pipeline-service/internal/domain"
)

// RedisLeaderboardCache stores ranked affiliate metrics as a JSON blob per
// window key.
type RedisLeaderboardCache struct {
	client *redis.Client
}

func NewRedisLeaderboardCache(client *redis.Client) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{client: client}
}

func (c *RedisLeaderboardCache) Get(ctx context.Context, key string) ([]domain.AffiliateMetrics, bool, error) {
	raw, err := c.client.Get(ctx, "pipeline:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rows []domain.AffiliateMetrics
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, false, nil
	}
	return rows, true, nil
}

func (c *RedisLeaderboardCache) Set(ctx context.Context, key string, rows []domain.AffiliateMetrics, ttl time.Duration) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "pipeline:"+key, raw, ttl).Err()
}
