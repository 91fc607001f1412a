package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/luminacare/pipeline-service/internal/domain"
)

// ComputeAffiliateMetrics derives one affiliate's conversion and commission
// figures from the raw event counters over the given window. A missing
// commission rate fails fast rather than producing a silent zero payout.
func (s *Service) ComputeAffiliateMetrics(ctx context.Context, actor Actor, affiliateID string, window time.Duration) (domain.AffiliateMetrics, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.AffiliateMetrics{}, domain.ErrUnauthorized
	}
	affiliateID = strings.TrimSpace(affiliateID)
	if affiliateID == "" {
		return domain.AffiliateMetrics{}, domain.ErrInvalidInput
	}
	if window <= 0 {
		window = s.cfg.LeaderboardWindow
	}
	aff, err := s.affiliates.GetByID(ctx, affiliateID)
	if err != nil {
		return domain.AffiliateMetrics{}, err
	}
	if aff.CommissionRate == nil {
		return domain.AffiliateMetrics{}, domain.ErrInvalidCommissionRate
	}
	counts, err := s.stats.GetCounts(ctx, affiliateID, s.nowFn().Add(-window))
	if err != nil {
		return domain.AffiliateMetrics{}, err
	}
	return domain.ComputeAffiliateMetrics(affiliateID, counts, *aff.CommissionRate)
}

// GetLeaderboard ranks every affiliate with a configured commission rate.
// Results are cached per window; the leaderboard is a display aggregate and
// tolerates cache-TTL staleness.
func (s *Service) GetLeaderboard(ctx context.Context, actor Actor, window time.Duration) ([]domain.AffiliateMetrics, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return nil, domain.ErrUnauthorized
	}
	if window <= 0 {
		window = s.cfg.LeaderboardWindow
	}
	cacheKey := fmt.Sprintf("leaderboard:%dh", int(window.Hours()))
	if s.leaderboard != nil {
		if rows, ok, err := s.leaderboard.Get(ctx, cacheKey); err == nil && ok {
			return rows, nil
		}
	}
	affiliates, err := s.affiliates.List(ctx)
	if err != nil {
		return nil, err
	}
	since := s.nowFn().Add(-window)
	rows := make([]domain.AffiliateMetrics, 0, len(affiliates))
	for _, aff := range affiliates {
		if aff.CommissionRate == nil {
			slog.Default().DebugContext(ctx, "leaderboard skipped affiliate without commission rate", "affiliate_id", aff.AffiliateID)
			continue
		}
		counts, err := s.stats.GetCounts(ctx, aff.AffiliateID, since)
		if err != nil {
			return nil, err
		}
		m, err := domain.ComputeAffiliateMetrics(aff.AffiliateID, counts, *aff.CommissionRate)
		if err != nil {
			return nil, err
		}
		rows = append(rows, m)
	}
	ranked := domain.RankAffiliates(rows)
	if s.leaderboard != nil {
		_ = s.leaderboard.Set(ctx, cacheKey, ranked, s.cfg.LeaderboardCacheTTL)
	}
	return ranked, nil
}
