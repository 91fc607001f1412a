package contracts

import (
	"encoding/json"
	"time"
)

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	EventClass       string          `json:"event_class,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    string          `json:"schema_version"`
	Data             json.RawMessage `json:"data"`
}

type DLQRecord struct {
	OriginalEvent EventEnvelope `json:"original_event"`
	ErrorSummary  string        `json:"error_summary"`
	RetryCount    int           `json:"retry_count"`
	FirstSeenAt   time.Time     `json:"first_seen_at"`
	LastErrorAt   time.Time     `json:"last_error_at"`
	SourceTopic   string        `json:"source_topic,omitempty"`
	DLQTopic      string        `json:"dlq_topic,omitempty"`
	TraceID       string        `json:"trace_id,omitempty"`
}

type OrderStatusChangedPayload struct {
	OrderID        string `json:"order_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	OccurredAt     string `json:"occurred_at"`
}

type OrderTrackingAttachedPayload struct {
	OrderID    string `json:"order_id"`
	Kind       string `json:"kind"`
	Code       string `json:"code"`
	AttachedAt string `json:"attached_at"`
}

type StageCreatedPayload struct {
	RegistryID string `json:"registry_id"`
	StageID    string `json:"stage_id"`
	Slug       string `json:"slug"`
	Position   int    `json:"position"`
	CreatedAt  string `json:"created_at"`
}

type StageReorderedPayload struct {
	RegistryID  string `json:"registry_id"`
	StageID     string `json:"stage_id"`
	TargetIndex int    `json:"target_index"`
	ChangedRows int    `json:"changed_rows"`
	ReorderedAt string `json:"reordered_at"`
}

type StageArchivedPayload struct {
	RegistryID string `json:"registry_id"`
	StageID    string `json:"stage_id"`
	ArchivedAt string `json:"archived_at"`
}

type LeadStageMovedPayload struct {
	LeadID      string `json:"lead_id"`
	FromStageID string `json:"from_stage_id,omitempty"`
	ToStageID   string `json:"to_stage_id"`
	MovedAt     string `json:"moved_at"`
}

type LeadStatusChangedPayload struct {
	LeadID         string `json:"lead_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	ChangedAt      string `json:"changed_at"`
}
