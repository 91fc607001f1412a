package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

type stageModel struct {
	StageID     string    `gorm:"column:stage_id;primaryKey"`
	RegistryID  string    `gorm:"column:registry_id"`
	Name        string    `gorm:"column:name"`
	Slug        string    `gorm:"column:slug"`
	Description string    `gorm:"column:description"`
	Color       string    `gorm:"column:color"`
	Position    int       `gorm:"column:position"`
	Active      bool      `gorm:"column:active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (stageModel) TableName() string { return "crm_stages" }

type leadModel struct {
	LeadID              string           `gorm:"column:lead_id;primaryKey"`
	RegistryID          string           `gorm:"column:registry_id"`
	StageID             *string          `gorm:"column:stage_id"`
	Status              string           `gorm:"column:status"`
	Name                string           `gorm:"column:name"`
	EstimatedValue      *decimal.Decimal `gorm:"column:estimated_value;type:numeric(20,2)"`
	AssignedAffiliateID *string          `gorm:"column:assigned_affiliate_id"`
	CreatedAt           time.Time        `gorm:"column:created_at"`
	UpdatedAt           time.Time        `gorm:"column:updated_at"`
}

func (leadModel) TableName() string { return "crm_leads" }

type leadStageChangeModel struct {
	ChangeID    string    `gorm:"column:change_id;primaryKey"`
	LeadID      string    `gorm:"column:lead_id"`
	FromStageID *string   `gorm:"column:from_stage_id"`
	ToStageID   *string   `gorm:"column:to_stage_id"`
	FromStatus  *string   `gorm:"column:from_status"`
	ToStatus    *string   `gorm:"column:to_status"`
	ChangedBy   string    `gorm:"column:changed_by"`
	OccurredAt  time.Time `gorm:"column:occurred_at"`
}

func (leadStageChangeModel) TableName() string { return "crm_lead_stage_history" }

type orderModel struct {
	OrderID                string           `gorm:"column:order_id;primaryKey"`
	PatientID              string           `gorm:"column:patient_id"`
	Status                 string           `gorm:"column:status"`
	Total                  *decimal.Decimal `gorm:"column:total;type:numeric(20,2)"`
	TrackingNumber         *string          `gorm:"column:tracking_number"`
	RegulatoryTrackingCode *string          `gorm:"column:regulatory_tracking_code"`
	ImportTrackingCode     *string          `gorm:"column:import_tracking_code"`
	CreatedAt              time.Time        `gorm:"column:created_at"`
	UpdatedAt              time.Time        `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "orders" }

type prescriptionModel struct {
	PrescriptionID string    `gorm:"column:prescription_id;primaryKey"`
	PatientID      string    `gorm:"column:patient_id"`
	Status         string    `gorm:"column:status"`
	IssuedAt       time.Time `gorm:"column:issued_at"`
}

func (prescriptionModel) TableName() string { return "prescriptions" }

type regulatoryApprovalModel struct {
	ApprovalID string    `gorm:"column:approval_id;primaryKey"`
	PatientID  string    `gorm:"column:patient_id"`
	Status     string    `gorm:"column:status"`
	FiledAt    time.Time `gorm:"column:filed_at"`
}

func (regulatoryApprovalModel) TableName() string { return "regulatory_approvals" }

type affiliateModel struct {
	AffiliateID    string           `gorm:"column:affiliate_id;primaryKey"`
	UserID         string           `gorm:"column:user_id"`
	Status         string           `gorm:"column:status"`
	CommissionRate *decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,2)"`
	CreatedAt      time.Time        `gorm:"column:created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at"`
}

func (affiliateModel) TableName() string { return "affiliates" }

type affiliateCounterModel struct {
	AffiliateID   string          `gorm:"column:affiliate_id;primaryKey"`
	WindowStart   time.Time       `gorm:"column:window_start;primaryKey"`
	Clicks        int64           `gorm:"column:clicks"`
	Registrations int64           `gorm:"column:registrations"`
	Purchases     int64           `gorm:"column:purchases"`
	TotalRevenue  decimal.Decimal `gorm:"column:total_revenue;type:numeric(20,2)"`
}

func (affiliateCounterModel) TableName() string { return "affiliate_event_counters" }

type outboxModel struct {
	RecordID         string     `gorm:"column:record_id;primaryKey"`
	EventClass       string     `gorm:"column:event_class"`
	EventID          string     `gorm:"column:event_id"`
	EventType        string     `gorm:"column:event_type"`
	OccurredAt       time.Time  `gorm:"column:occurred_at"`
	PartitionKeyPath string     `gorm:"column:partition_key_path"`
	PartitionKey     string     `gorm:"column:partition_key"`
	SourceService    string     `gorm:"column:source_service"`
	TraceID          string     `gorm:"column:trace_id"`
	SchemaVersion    string     `gorm:"column:schema_version"`
	Payload          string     `gorm:"column:payload;type:jsonb"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	SentAt           *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "pipeline_outbox" }
