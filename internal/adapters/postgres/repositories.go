package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/luminacare/pipeline-service/internal/domain"
	"github.com/luminacare/pipeline-service/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repositories struct {
	Stages        *StageRepository
	Leads         *LeadRepository
	LeadHistory   *LeadStageHistoryRepository
	Orders        *OrderRepository
	Prescriptions *PrescriptionRepository
	Approvals     *RegulatoryApprovalRepository
	Affiliates    *AffiliateRepository
	Stats         *AffiliateStatsRepository
	Outbox        *OutboxRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Stages:        &StageRepository{db: db},
		Leads:         &LeadRepository{db: db},
		LeadHistory:   &LeadStageHistoryRepository{db: db},
		Orders:        &OrderRepository{db: db},
		Prescriptions: &PrescriptionRepository{db: db},
		Approvals:     &RegulatoryApprovalRepository{db: db},
		Affiliates:    &AffiliateRepository{db: db},
		Stats:         &AffiliateStatsRepository{db: db},
		Outbox:        &OutboxRepository{db: db},
	}
}

type StageRepository struct {
	db *gorm.DB
}

func (r *StageRepository) GetByID(ctx context.Context, stageID string) (domain.Stage, error) {
	var rec stageModel
	if err := r.db.WithContext(ctx).Where("stage_id = ?", stageID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Stage{}, domain.ErrNotFound
		}
		return domain.Stage{}, err
	}
	return toDomainStage(rec), nil
}

func (r *StageRepository) ListActiveByRegistry(ctx context.Context, registryID string) ([]domain.Stage, error) {
	var recs []stageModel
	if err := r.db.WithContext(ctx).
		Where("registry_id = ? AND active", registryID).
		Order("position ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	rows := make([]domain.Stage, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, toDomainStage(rec))
	}
	return rows, nil
}

func activeStagesForUpdate(tx *gorm.DB, registryID string) ([]domain.Stage, error) {
	var recs []stageModel
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("registry_id = ? AND active", registryID).
		Order("position ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	rows := make([]domain.Stage, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, toDomainStage(rec))
	}
	return rows, nil
}

// CreateTx snapshots the registry's active stages under a row lock, lets the
// caller compute the new row (slug check, append position), and inserts it in
// the same transaction. The partial unique index on (registry_id, slug) is the
// backstop for racing creates.
func (r *StageRepository) CreateTx(ctx context.Context, registryID string, fn func(active []domain.Stage) (domain.Stage, error)) (domain.Stage, error) {
	var result domain.Stage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := activeStagesForUpdate(tx, registryID)
		if err != nil {
			return err
		}
		row, err := fn(active)
		if err != nil {
			return err
		}
		rec := toStageModel(row)
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateSlug
			}
			return err
		}
		result = row
		return nil
	})
	if err != nil {
		return domain.Stage{}, err
	}
	return result, nil
}

// ReorderTx writes only the changed rows the closure reports, keeping write
// amplification at |i-j|+1 rows instead of a full registry rewrite.
func (r *StageRepository) ReorderTx(ctx context.Context, registryID string, fn func(active []domain.Stage) ([]domain.PositionChange, error)) ([]domain.PositionChange, error) {
	var changes []domain.PositionChange
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := activeStagesForUpdate(tx, registryID)
		if err != nil {
			return err
		}
		changes, err = fn(active)
		if err != nil {
			return err
		}
		for _, c := range changes {
			if err := tx.Model(&stageModel{}).
				Where("stage_id = ?", c.StageID).
				Updates(map[string]any{"position": c.NewPosition, "updated_at": time.Now().UTC()}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (r *StageRepository) Update(ctx context.Context, row domain.Stage) error {
	rec := toStageModel(row)
	// Select("*") forces zero-value columns (active=false on archive) into the
	// SET list; a plain struct Updates would skip them.
	res := r.db.WithContext(ctx).Model(&stageModel{}).Where("stage_id = ?", row.StageID).Select("*").Omit("stage_id", "created_at").Updates(&rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type LeadRepository struct {
	db *gorm.DB
}

func (r *LeadRepository) Create(ctx context.Context, row domain.Lead) error {
	rec := toLeadModel(row)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, leadID string) (domain.Lead, error) {
	var rec leadModel
	if err := r.db.WithContext(ctx).Where("lead_id = ?", leadID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Lead{}, domain.ErrNotFound
		}
		return domain.Lead{}, err
	}
	return toDomainLead(rec), nil
}

func (r *LeadRepository) UpdateTx(ctx context.Context, leadID string, fn func(lead *domain.Lead) error) (domain.Lead, error) {
	var result domain.Lead
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec leadModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("lead_id = ?", leadID).Take(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		row := toDomainLead(rec)
		if err := fn(&row); err != nil {
			return err
		}
		updated := toLeadModel(row)
		if err := tx.Model(&leadModel{}).Where("lead_id = ?", leadID).Select("*").Omit("lead_id", "created_at").Updates(&updated).Error; err != nil {
			return err
		}
		result = row
		return nil
	})
	if err != nil {
		return domain.Lead{}, err
	}
	return result, nil
}

type LeadStageHistoryRepository struct {
	db *gorm.DB
}

func (r *LeadStageHistoryRepository) Append(ctx context.Context, row domain.LeadStageChange) error {
	rec := leadStageChangeModel{
		ChangeID:    row.ChangeID,
		LeadID:      row.LeadID,
		FromStageID: strPtr(row.FromStageID),
		ToStageID:   strPtr(row.ToStageID),
		FromStatus:  strPtr(row.FromStatus),
		ToStatus:    strPtr(row.ToStatus),
		ChangedBy:   row.ChangedBy,
		OccurredAt:  row.OccurredAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *LeadStageHistoryRepository) ListByLeadID(ctx context.Context, leadID string) ([]domain.LeadStageChange, error) {
	var recs []leadStageChangeModel
	if err := r.db.WithContext(ctx).Where("lead_id = ?", leadID).Order("occurred_at ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	rows := make([]domain.LeadStageChange, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, domain.LeadStageChange{
			ChangeID:    rec.ChangeID,
			LeadID:      rec.LeadID,
			FromStageID: strVal(rec.FromStageID),
			ToStageID:   strVal(rec.ToStageID),
			FromStatus:  strVal(rec.FromStatus),
			ToStatus:    strVal(rec.ToStatus),
			ChangedBy:   rec.ChangedBy,
			OccurredAt:  rec.OccurredAt,
		})
	}
	return rows, nil
}

type OrderRepository struct {
	db *gorm.DB
}

func (r *OrderRepository) Create(ctx context.Context, row domain.Order) error {
	rec := toOrderModel(row)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (domain.Order, error) {
	var rec orderModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, err
	}
	return toDomainOrder(rec), nil
}

func (r *OrderRepository) ListByPatientID(ctx context.Context, patientID string) ([]domain.Order, error) {
	var recs []orderModel
	if err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	rows := make([]domain.Order, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, toDomainOrder(rec))
	}
	return rows, nil
}

// UpdateTx locks the order row, applies the caller's mutation, and persists
// the row together with the outbox record the closure returns. Status change
// and event become durable in one commit or not at all.
func (r *OrderRepository) UpdateTx(ctx context.Context, orderID string, fn func(order *domain.Order) (*ports.OutboxRecord, error)) (domain.Order, error) {
	var result domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec orderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("order_id = ?", orderID).Take(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		row := toDomainOrder(rec)
		outboxRec, err := fn(&row)
		if err != nil {
			return err
		}
		updated := toOrderModel(row)
		if err := tx.Model(&orderModel{}).Where("order_id = ?", orderID).Select("*").Omit("order_id", "created_at").Updates(&updated).Error; err != nil {
			return err
		}
		if outboxRec != nil {
			obx := toOutboxModel(*outboxRec)
			if err := tx.Create(&obx).Error; err != nil {
				return err
			}
		}
		result = row
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}

type PrescriptionRepository struct {
	db *gorm.DB
}

func (r *PrescriptionRepository) ListByPatientID(ctx context.Context, patientID string) ([]domain.Prescription, error) {
	var recs []prescriptionModel
	if err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("issued_at ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	rows := make([]domain.Prescription, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, domain.Prescription{PrescriptionID: rec.PrescriptionID, PatientID: rec.PatientID, Status: rec.Status, IssuedAt: rec.IssuedAt})
	}
	return rows, nil
}

type RegulatoryApprovalRepository struct {
	db *gorm.DB
}

func (r *RegulatoryApprovalRepository) ListByPatientID(ctx context.Context, patientID string) ([]domain.RegulatoryApproval, error) {
	var recs []regulatoryApprovalModel
	if err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("filed_at ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	rows := make([]domain.RegulatoryApproval, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, domain.RegulatoryApproval{ApprovalID: rec.ApprovalID, PatientID: rec.PatientID, Status: rec.Status, FiledAt: rec.FiledAt})
	}
	return rows, nil
}

type AffiliateRepository struct {
	db *gorm.DB
}

func (r *AffiliateRepository) GetByID(ctx context.Context, affiliateID string) (domain.Affiliate, error) {
	var rec affiliateModel
	if err := r.db.WithContext(ctx).Where("affiliate_id = ?", affiliateID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Affiliate{}, domain.ErrNotFound
		}
		return domain.Affiliate{}, err
	}
	return domain.Affiliate{AffiliateID: rec.AffiliateID, UserID: rec.UserID, Status: rec.Status, CommissionRate: rec.CommissionRate, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}, nil
}

func (r *AffiliateRepository) List(ctx context.Context) ([]domain.Affiliate, error) {
	var recs []affiliateModel
	if err := r.db.WithContext(ctx).Order("affiliate_id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	rows := make([]domain.Affiliate, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, domain.Affiliate{AffiliateID: rec.AffiliateID, UserID: rec.UserID, Status: rec.Status, CommissionRate: rec.CommissionRate, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt})
	}
	return rows, nil
}

type AffiliateStatsRepository struct {
	db *gorm.DB
}

func (r *AffiliateStatsRepository) GetCounts(ctx context.Context, affiliateID string, since time.Time) (domain.EventCounts, error) {
	var recs []affiliateCounterModel
	if err := r.db.WithContext(ctx).
		Where("affiliate_id = ? AND window_start >= ?", affiliateID, since).
		Find(&recs).Error; err != nil {
		return domain.EventCounts{}, err
	}
	var total domain.EventCounts
	for _, rec := range recs {
		total.Clicks += rec.Clicks
		total.Registrations += rec.Registrations
		total.Purchases += rec.Purchases
		total.TotalRevenue = total.TotalRevenue.Add(rec.TotalRevenue)
	}
	return total, nil
}

type OutboxRepository struct {
	db *gorm.DB
}

func (r *OutboxRepository) Enqueue(ctx context.Context, record ports.OutboxRecord) error {
	rec := toOutboxModel(record)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	var recs []outboxModel
	q := r.db.WithContext(ctx).Where("sent_at IS NULL").Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	rows := make([]ports.OutboxRecord, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, toDomainOutboxRecord(rec))
	}
	return rows, nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, recordID string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&outboxModel{}).Where("record_id = ?", recordID).Update("sent_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
