package ports

import (
	"context"
	"time"

	"github.com/luminacare/pipeline-service/internal/domain"
)

// LeaderboardCache holds ranked affiliate metrics for display reads. The
// leaderboard is an eventually-consistent aggregate; a stale entry within the
// TTL is acceptable by contract.
type LeaderboardCache interface {
	Get(ctx context.Context, key string) ([]domain.AffiliateMetrics, bool, error)
	Set(ctx context.Context, key string, rows []domain.AffiliateMetrics, ttl time.Duration) error
}
