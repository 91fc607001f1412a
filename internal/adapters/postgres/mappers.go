package postgres

import (
	"encoding/json"
	"errors"

	"github.com/luminacare/pipeline-service/internal/contracts"
	"github.com/luminacare/pipeline-service/internal/domain"
	"github.com/luminacare/pipeline-service/internal/ports"
	"gorm.io/gorm"
)

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func toStageModel(row domain.Stage) stageModel {
	return stageModel{
		StageID:     row.StageID,
		RegistryID:  row.RegistryID,
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Description,
		Color:       row.Color,
		Position:    row.Position,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func toDomainStage(rec stageModel) domain.Stage {
	return domain.Stage{
		StageID:     rec.StageID,
		RegistryID:  rec.RegistryID,
		Name:        rec.Name,
		Slug:        rec.Slug,
		Description: rec.Description,
		Color:       rec.Color,
		Position:    rec.Position,
		Active:      rec.Active,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func toLeadModel(row domain.Lead) leadModel {
	return leadModel{
		LeadID:              row.LeadID,
		RegistryID:          row.RegistryID,
		StageID:             strPtr(row.StageID),
		Status:              string(row.Status),
		Name:                row.Name,
		EstimatedValue:      row.EstimatedValue,
		AssignedAffiliateID: strPtr(row.AssignedAffiliateID),
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func toDomainLead(rec leadModel) domain.Lead {
	return domain.Lead{
		LeadID:              rec.LeadID,
		RegistryID:          rec.RegistryID,
		StageID:             strVal(rec.StageID),
		Status:              domain.LeadStatus(rec.Status),
		Name:                rec.Name,
		EstimatedValue:      rec.EstimatedValue,
		AssignedAffiliateID: strVal(rec.AssignedAffiliateID),
		CreatedAt:           rec.CreatedAt,
		UpdatedAt:           rec.UpdatedAt,
	}
}

func toDomainOrder(rec orderModel) domain.Order {
	return domain.Order{
		OrderID:                rec.OrderID,
		PatientID:              rec.PatientID,
		Status:                 domain.OrderStatus(rec.Status),
		Total:                  rec.Total,
		TrackingNumber:         strVal(rec.TrackingNumber),
		RegulatoryTrackingCode: strVal(rec.RegulatoryTrackingCode),
		ImportTrackingCode:     strVal(rec.ImportTrackingCode),
		CreatedAt:              rec.CreatedAt,
		UpdatedAt:              rec.UpdatedAt,
	}
}

func toOrderModel(row domain.Order) orderModel {
	return orderModel{
		OrderID:                row.OrderID,
		PatientID:              row.PatientID,
		Status:                 string(row.Status),
		Total:                  row.Total,
		TrackingNumber:         strPtr(row.TrackingNumber),
		RegulatoryTrackingCode: strPtr(row.RegulatoryTrackingCode),
		ImportTrackingCode:     strPtr(row.ImportTrackingCode),
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}
}

func toOutboxModel(rec ports.OutboxRecord) outboxModel {
	return outboxModel{
		RecordID:         rec.RecordID,
		EventClass:       rec.EventClass,
		EventID:          rec.Envelope.EventID,
		EventType:        rec.Envelope.EventType,
		OccurredAt:       rec.Envelope.OccurredAt,
		PartitionKeyPath: rec.Envelope.PartitionKeyPath,
		PartitionKey:     rec.Envelope.PartitionKey,
		SourceService:    rec.Envelope.SourceService,
		TraceID:          rec.Envelope.TraceID,
		SchemaVersion:    rec.Envelope.SchemaVersion,
		Payload:          string(rec.Envelope.Data),
		CreatedAt:        rec.CreatedAt,
		SentAt:           rec.SentAt,
	}
}

func toDomainOutboxRecord(rec outboxModel) ports.OutboxRecord {
	return ports.OutboxRecord{
		RecordID:   rec.RecordID,
		EventClass: rec.EventClass,
		Envelope: contracts.EventEnvelope{
			EventID:          rec.EventID,
			EventType:        rec.EventType,
			EventClass:       rec.EventClass,
			OccurredAt:       rec.OccurredAt,
			PartitionKeyPath: rec.PartitionKeyPath,
			PartitionKey:     rec.PartitionKey,
			SourceService:    rec.SourceService,
			TraceID:          rec.TraceID,
			SchemaVersion:    rec.SchemaVersion,
			Data:             json.RawMessage(rec.Payload),
		},
		CreatedAt: rec.CreatedAt,
		SentAt:    rec.SentAt,
	}
}
