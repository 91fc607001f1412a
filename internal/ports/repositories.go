package ports

import (
	"context"
	"time"

	"github.com/luminacare/pipeline-service/internal/domain"
)

// StageRepository owns the registry-scoped stage rows. CreateTx and ReorderTx
// run their closure over a locked snapshot of the registry's active stages so
// two concurrent writers never observe a half-updated position range.
type StageRepository interface {
	GetByID(ctx context.Context, stageID string) (domain.Stage, error)
	ListActiveByRegistry(ctx context.Context, registryID string) ([]domain.Stage, error)
	CreateTx(ctx context.Context, registryID string, fn func(active []domain.Stage) (domain.Stage, error)) (domain.Stage, error)
	ReorderTx(ctx context.Context, registryID string, fn func(active []domain.Stage) ([]domain.PositionChange, error)) ([]domain.PositionChange, error)
	Update(ctx context.Context, row domain.Stage) error
}

type LeadRepository interface {
	Create(ctx context.Context, row domain.Lead) error
	GetByID(ctx context.Context, leadID string) (domain.Lead, error)
	// UpdateTx applies fn to the current row inside one atomic
	// read-modify-write unit, serialized per lead id.
	UpdateTx(ctx context.Context, leadID string, fn func(lead *domain.Lead) error) (domain.Lead, error)
}

type LeadStageHistoryRepository interface {
	Append(ctx context.Context, row domain.LeadStageChange) error
	ListByLeadID(ctx context.Context, leadID string) ([]domain.LeadStageChange, error)
}

// OrderRepository serializes writes per order id. UpdateTx persists the
// mutated row and the outbox record returned by fn in the same transaction,
// which is what makes transition events durable exactly once.
type OrderRepository interface {
	Create(ctx context.Context, row domain.Order) error
	GetByID(ctx context.Context, orderID string) (domain.Order, error)
	ListByPatientID(ctx context.Context, patientID string) ([]domain.Order, error)
	UpdateTx(ctx context.Context, orderID string, fn func(order *domain.Order) (*OutboxRecord, error)) (domain.Order, error)
}

type PrescriptionRepository interface {
	ListByPatientID(ctx context.Context, patientID string) ([]domain.Prescription, error)
}

type RegulatoryApprovalRepository interface {
	ListByPatientID(ctx context.Context, patientID string) ([]domain.RegulatoryApproval, error)
}

type AffiliateRepository interface {
	GetByID(ctx context.Context, affiliateID string) (domain.Affiliate, error)
	List(ctx context.Context) ([]domain.Affiliate, error)
}

// AffiliateStatsRepository reads the raw event counters; rows are aggregated
// by affiliate id and window start, summed here from the given instant.
type AffiliateStatsRepository interface {
	GetCounts(ctx context.Context, affiliateID string, since time.Time) (domain.EventCounts, error)
}
