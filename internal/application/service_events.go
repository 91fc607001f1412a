package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/luminacare/pipeline-service/internal/contracts"
	"github.com/luminacare/pipeline-service/internal/domain"
	"github.com/luminacare/pipeline-service/internal/ports"
)

// FlushOutbox publishes pending outbox records in enqueue order. Domain-class
// events that fail to publish are captured to the DLQ and stop the batch;
// analytics-class events are fire-and-forget.
func (s *Service) FlushOutbox(ctx context.Context) error {
	if s.outbox == nil {
		return nil
	}
	pending, err := s.outbox.ListPending(ctx, s.cfg.OutboxFlushBatchSize)
	if err != nil {
		return err
	}
	for _, rec := range pending {
		now := s.nowFn()
		switch rec.EventClass {
		case domain.CanonicalEventClassDomain:
			if s.domainEvents != nil {
				if err := s.domainEvents.PublishDomain(ctx, rec.Envelope); err != nil {
					if s.dlq != nil {
						n := s.nowFn()
						_ = s.dlq.PublishDLQ(ctx, contracts.DLQRecord{
							OriginalEvent: rec.Envelope,
							ErrorSummary:  err.Error(),
							RetryCount:    1,
							FirstSeenAt:   n,
							LastErrorAt:   n,
							SourceTopic:   rec.Envelope.EventType,
							DLQTopic:      "pipeline-service.dlq",
							TraceID:       rec.Envelope.TraceID,
						})
					}
					return err
				}
			}
		case domain.CanonicalEventClassAnalyticsOnly:
			if s.analytics != nil {
				_ = s.analytics.PublishAnalytics(ctx, rec.Envelope)
			}
		default:
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedEventClass, rec.EventClass)
		}
		if err := s.outbox.MarkSent(ctx, rec.RecordID, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) buildOutboxRecord(eventType, traceID string, data any, partitionKey string, now time.Time) (*ports.OutboxRecord, error) {
	if !domain.IsCanonicalEmittedEvent(eventType) {
		return nil, domain.ErrUnsupportedEventType
	}
	if strings.TrimSpace(partitionKey) == "" {
		return nil, domain.ErrInvalidEnvelope
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(traceID) == "" {
		traceID = uuid.NewString()
	}
	env := contracts.EventEnvelope{
		EventID:          uuid.NewString(),
		EventType:        eventType,
		EventClass:       domain.CanonicalEventClass(eventType),
		OccurredAt:       now,
		PartitionKeyPath: domain.CanonicalPartitionKeyPath(eventType),
		PartitionKey:     partitionKey,
		SourceService:    s.cfg.ServiceName,
		TraceID:          traceID,
		SchemaVersion:    "v1",
		Data:             b,
	}
	return &ports.OutboxRecord{RecordID: newRecordID(), EventClass: env.EventClass, Envelope: env, CreatedAt: now}, nil
}

func (s *Service) enqueueEvent(ctx context.Context, eventType, traceID string, data any, partitionKey string, now time.Time) error {
	if s.outbox == nil {
		return nil
	}
	rec, err := s.buildOutboxRecord(eventType, traceID, data, partitionKey, now)
	if err != nil {
		return err
	}
	return s.outbox.Enqueue(ctx, *rec)
}

func (s *Service) outboxRecordForStatusChange(order domain.Order, previous domain.OrderStatus, traceID string, now time.Time) (*ports.OutboxRecord, error) {
	return s.buildOutboxRecord(domain.EventOrderStatusChanged, traceID, contracts.OrderStatusChangedPayload{
		OrderID:        order.OrderID,
		PreviousStatus: string(previous),
		NewStatus:      string(order.Status),
		OccurredAt:     now.UTC().Format(time.RFC3339),
	}, order.OrderID, now)
}

func (s *Service) outboxRecordForTrackingAttached(order domain.Order, kind domain.TrackingKind, traceID string, now time.Time) (*ports.OutboxRecord, error) {
	return s.buildOutboxRecord(domain.EventOrderTrackingAttached, traceID, contracts.OrderTrackingAttachedPayload{
		OrderID:    order.OrderID,
		Kind:       string(kind),
		Code:       trackingCode(order, kind),
		AttachedAt: now.UTC().Format(time.RFC3339),
	}, order.OrderID, now)
}

func (s *Service) enqueueStageCreated(ctx context.Context, stage domain.Stage, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventStageCreated, traceID, contracts.StageCreatedPayload{RegistryID: stage.RegistryID, StageID: stage.StageID, Slug: stage.Slug, Position: stage.Position, CreatedAt: now.UTC().Format(time.RFC3339)}, stage.RegistryID, now)
}

func (s *Service) enqueueStageReordered(ctx context.Context, stage domain.Stage, targetIndex, changedRows int, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventStageReordered, traceID, contracts.StageReorderedPayload{RegistryID: stage.RegistryID, StageID: stage.StageID, TargetIndex: targetIndex, ChangedRows: changedRows, ReorderedAt: now.UTC().Format(time.RFC3339)}, stage.RegistryID, now)
}

func (s *Service) enqueueStageArchived(ctx context.Context, stage domain.Stage, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventStageArchived, traceID, contracts.StageArchivedPayload{RegistryID: stage.RegistryID, StageID: stage.StageID, ArchivedAt: now.UTC().Format(time.RFC3339)}, stage.RegistryID, now)
}

func (s *Service) enqueueLeadStageMoved(ctx context.Context, lead domain.Lead, fromStageID, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventLeadStageMoved, traceID, contracts.LeadStageMovedPayload{LeadID: lead.LeadID, FromStageID: fromStageID, ToStageID: lead.StageID, MovedAt: now.UTC().Format(time.RFC3339)}, lead.LeadID, now)
}

func (s *Service) enqueueLeadStatusChanged(ctx context.Context, lead domain.Lead, previous domain.LeadStatus, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventLeadStatusChanged, traceID, contracts.LeadStatusChangedPayload{LeadID: lead.LeadID, PreviousStatus: string(previous), NewStatus: string(lead.Status), ChangedAt: now.UTC().Format(time.RFC3339)}, lead.LeadID, now)
}
