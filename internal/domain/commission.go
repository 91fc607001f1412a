package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type Affiliate struct {
	AffiliateID    string           `json:"affiliate_id"`
	UserID         string           `json:"user_id"`
	Status         string           `json:"status"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// EventCounts are the raw per-affiliate counters owned by the storage
// collaborator, aggregated by affiliate id and time window.
type EventCounts struct {
	Clicks        int64           `json:"clicks"`
	Registrations int64           `json:"registrations"`
	Purchases     int64           `json:"purchases"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type AffiliateMetrics struct {
	AffiliateID     string          `json:"affiliate_id"`
	Clicks          int64           `json:"clicks"`
	Registrations   int64           `json:"registrations"`
	Purchases       int64           `json:"purchases"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	ConversionRate  decimal.Decimal `json:"conversion_rate"`
}

var hundred = decimal.NewFromInt(100)

// ValidateCommissionRate accepts a percentage in [0, 100]. A missing rate is
// rejected by the caller before reaching here; a silent zero payout would be
// indistinguishable from "no sales".
func ValidateCommissionRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return ErrInvalidCommissionRate
	}
	return nil
}

// ComputeAffiliateMetrics derives conversion and payout figures from raw
// counts. All money math stays in decimal; commission feeds payout obligations
// and must not drift the way binary floating point does.
func ComputeAffiliateMetrics(affiliateID string, counts EventCounts, commissionRate decimal.Decimal) (AffiliateMetrics, error) {
	if err := ValidateCommissionRate(commissionRate); err != nil {
		return AffiliateMetrics{}, err
	}
	conversion := decimal.Zero
	if counts.Registrations > 0 {
		conversion = decimal.NewFromInt(counts.Purchases).
			Div(decimal.NewFromInt(counts.Registrations)).
			Mul(hundred).
			Round(1)
	}
	commission := counts.TotalRevenue.Mul(commissionRate).Div(hundred).Round(2)
	return AffiliateMetrics{
		AffiliateID:     affiliateID,
		Clicks:          counts.Clicks,
		Registrations:   counts.Registrations,
		Purchases:       counts.Purchases,
		TotalRevenue:    counts.TotalRevenue,
		TotalCommission: commission,
		ConversionRate:  conversion,
	}, nil
}

// RankAffiliates orders by total revenue descending, ties broken by
// registrations descending, then affiliate id ascending. The full ordering is
// deterministic so paginated listings stay stable.
func RankAffiliates(rows []AffiliateMetrics) []AffiliateMetrics {
	ranked := make([]AffiliateMetrics, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		if c := ranked[i].TotalRevenue.Cmp(ranked[j].TotalRevenue); c != 0 {
			return c > 0
		}
		if ranked[i].Registrations != ranked[j].Registrations {
			return ranked[i].Registrations > ranked[j].Registrations
		}
		return ranked[i].AffiliateID < ranked[j].AffiliateID
	})
	return ranked
}
