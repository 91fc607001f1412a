// Package memory provides map-backed implementations of every repository
// port. They serialize writes the same way the Postgres adapter does (one
// writer per registry or aggregate id) and back the unit tests and local runs
// without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/luminacare/pipeline-service/internal/domain"
	"github.com/luminacare/pipeline-service/internal/ports"
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

func NewRepositories() *Repositories {
	repos := &Repositories{
		Stages:        &StageRepository{byID: map[string]domain.Stage{}},
		Leads:         &LeadRepository{byID: map[string]domain.Lead{}},
		LeadHistory:   &LeadStageHistoryRepository{byLead: map[string][]domain.LeadStageChange{}},
		Orders:        &OrderRepository{byID: map[string]domain.Order{}},
		Prescriptions: &PrescriptionRepository{byPatient: map[string][]domain.Prescription{}},
		Approvals:     &RegulatoryApprovalRepository{byPatient: map[string][]domain.RegulatoryApproval{}},
		Affiliates:    &AffiliateRepository{byID: map[string]domain.Affiliate{}},
		Stats:         &AffiliateStatsRepository{rows: map[string][]CounterRow{}},
		Outbox:        &OutboxRepository{rows: map[string]ports.OutboxRecord{}, order: []string{}},
	}
	repos.Orders.BindOutbox(repos.Outbox)
	return repos
}

type StageRepository struct {
	mu   sync.Mutex
	byID map[string]domain.Stage
}

func (r *StageRepository) GetByID(_ context.Context, stageID string) (domain.Stage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[strings.TrimSpace(stageID)]
	if !ok {
		return domain.Stage{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *StageRepository) ListActiveByRegistry(_ context.Context, registryID string) ([]domain.Stage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked(registryID), nil
}

func (r *StageRepository) activeLocked(registryID string) []domain.Stage {
	rows := make([]domain.Stage, 0)
	for _, row := range r.byID {
		if row.RegistryID == registryID && row.Active {
			rows = append(rows, row)
		}
	}
	// Archive-then-create can leave two active stages at the same position
	// until the next reorder repairs the range; the stage id tiebreak keeps
	// the listing deterministic in the meantime.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Position != rows[j].Position {
			return rows[i].Position < rows[j].Position
		}
		return rows[i].StageID < rows[j].StageID
	})
	return rows
}

func (r *StageRepository) CreateTx(_ context.Context, registryID string, fn func(active []domain.Stage) (domain.Stage, error)) (domain.Stage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, err := fn(r.activeLocked(registryID))
	if err != nil {
		return domain.Stage{}, err
	}
	if _, ok := r.byID[row.StageID]; ok {
		return domain.Stage{}, domain.ErrConflict
	}
	r.byID[row.StageID] = row
	return row, nil
}

func (r *StageRepository) ReorderTx(_ context.Context, registryID string, fn func(active []domain.Stage) ([]domain.PositionChange, error)) ([]domain.PositionChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	changes, err := fn(r.activeLocked(registryID))
	if err != nil {
		return nil, err
	}
	for _, c := range changes {
		row := r.byID[c.StageID]
		row.Position = c.NewPosition
		r.byID[c.StageID] = row
	}
	return changes, nil
}

func (r *StageRepository) Update(_ context.Context, row domain.Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[row.StageID]; !ok {
		return domain.ErrNotFound
	}
	r.byID[row.StageID] = row
	return nil
}

type LeadRepository struct {
	mu   sync.Mutex
	byID map[string]domain.Lead
}

func (r *LeadRepository) Create(_ context.Context, row domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[row.LeadID]; ok {
		return domain.ErrConflict
	}
	r.byID[row.LeadID] = row
	return nil
}

func (r *LeadRepository) GetByID(_ context.Context, leadID string) (domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[strings.TrimSpace(leadID)]
	if !ok {
		return domain.Lead{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *LeadRepository) UpdateTx(_ context.Context, leadID string, fn func(lead *domain.Lead) error) (domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[strings.TrimSpace(leadID)]
	if !ok {
		return domain.Lead{}, domain.ErrNotFound
	}
	if err := fn(&row); err != nil {
		return domain.Lead{}, err
	}
	r.byID[row.LeadID] = row
	return row, nil
}

type LeadStageHistoryRepository struct {
	mu     sync.Mutex
	byLead map[string][]domain.LeadStageChange
}

func (r *LeadStageHistoryRepository) Append(_ context.Context, row domain.LeadStageChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byLead[row.LeadID] = append(r.byLead[row.LeadID], row)
	return nil
}

func (r *LeadStageHistoryRepository) ListByLeadID(_ context.Context, leadID string) ([]domain.LeadStageChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.byLead[strings.TrimSpace(leadID)]
	out := make([]domain.LeadStageChange, len(rows))
	copy(out, rows)
	return out, nil
}

type OrderRepository struct {
	mu     sync.Mutex
	byID   map[string]domain.Order
	outbox *OutboxRepository
}

// BindOutbox wires the outbox so UpdateTx can persist the mutated order and
// its event record atomically, mirroring the Postgres transaction.
func (r *OrderRepository) BindOutbox(outbox *OutboxRepository) { r.outbox = outbox }

func (r *OrderRepository) Create(_ context.Context, row domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[row.OrderID]; ok {
		return domain.ErrConflict
	}
	r.byID[row.OrderID] = row
	return nil
}

func (r *OrderRepository) GetByID(_ context.Context, orderID string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[strings.TrimSpace(orderID)]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *OrderRepository) ListByPatientID(_ context.Context, patientID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([]domain.Order, 0)
	for _, row := range r.byID {
		if row.PatientID == patientID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows, nil
}

func (r *OrderRepository) UpdateTx(ctx context.Context, orderID string, fn func(order *domain.Order) (*ports.OutboxRecord, error)) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[strings.TrimSpace(orderID)]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	rec, err := fn(&row)
	if err != nil {
		return domain.Order{}, err
	}
	if rec != nil && r.outbox != nil {
		if err := r.outbox.Enqueue(ctx, *rec); err != nil {
			return domain.Order{}, err
		}
	}
	r.byID[row.OrderID] = row
	return row, nil
}

type PrescriptionRepository struct {
	mu        sync.Mutex
	byPatient map[string][]domain.Prescription
}

func (r *PrescriptionRepository) Seed(row domain.Prescription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPatient[row.PatientID] = append(r.byPatient[row.PatientID], row)
}

func (r *PrescriptionRepository) ListByPatientID(_ context.Context, patientID string) ([]domain.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.byPatient[strings.TrimSpace(patientID)]
	out := make([]domain.Prescription, len(rows))
	copy(out, rows)
	return out, nil
}

type RegulatoryApprovalRepository struct {
	mu        sync.Mutex
	byPatient map[string][]domain.RegulatoryApproval
}

func (r *RegulatoryApprovalRepository) Seed(row domain.RegulatoryApproval) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPatient[row.PatientID] = append(r.byPatient[row.PatientID], row)
}

func (r *RegulatoryApprovalRepository) ListByPatientID(_ context.Context, patientID string) ([]domain.RegulatoryApproval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.byPatient[strings.TrimSpace(patientID)]
	out := make([]domain.RegulatoryApproval, len(rows))
	copy(out, rows)
	return out, nil
}

type AffiliateRepository struct {
	mu   sync.Mutex
	byID map[string]domain.Affiliate
}

func (r *AffiliateRepository) Seed(row domain.Affiliate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[row.AffiliateID] = row
}

func (r *AffiliateRepository) GetByID(_ context.Context, affiliateID string) (domain.Affiliate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[strings.TrimSpace(affiliateID)]
	if !ok {
		return domain.Affiliate{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *AffiliateRepository) List(_ context.Context) ([]domain.Affiliate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([]domain.Affiliate, 0, len(r.byID))
	for _, row := range r.byID {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AffiliateID < rows[j].AffiliateID })
	return rows, nil
}

// CounterRow is one aggregated counter window, the shape the storage
// collaborator owns.
type CounterRow struct {
	WindowStart time.Time
	Counts      domain.EventCounts
}

type AffiliateStatsRepository struct {
	mu   sync.Mutex
	rows map[string][]CounterRow
}

func (r *AffiliateStatsRepository) Seed(affiliateID string, row CounterRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[affiliateID] = append(r.rows[affiliateID], row)
}

func (r *AffiliateStatsRepository) GetCounts(_ context.Context, affiliateID string, since time.Time) (domain.EventCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total domain.EventCounts
	for _, row := range r.rows[strings.TrimSpace(affiliateID)] {
		if row.WindowStart.Before(since) {
			continue
		}
		total.Clicks += row.Counts.Clicks
		total.Registrations += row.Counts.Registrations
		total.Purchases += row.Counts.Purchases
		total.TotalRevenue = total.TotalRevenue.Add(row.Counts.TotalRevenue)
	}
	return total, nil
}

type OutboxRepository struct {
	mu    sync.Mutex
	rows  map[string]ports.OutboxRecord
	order []string
}

func (r *OutboxRepository) Enqueue(_ context.Context, record ports.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[record.RecordID]; ok {
		return domain.ErrConflict
	}
	r.rows[record.RecordID] = record
	r.order = append(r.order, record.RecordID)
	return nil
}

func (r *OutboxRepository) ListPending(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.OutboxRecord, 0, limit)
	for _, id := range r.order {
		rec := r.rows[id]
		if rec.SentAt != nil {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepository) MarkSent(_ context.Context, recordID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[recordID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.SentAt = &at
	r.rows[recordID] = rec
	return nil
}
