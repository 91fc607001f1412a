package application

import (
	"context"
	"errors"
	"testing"

	"github.com/luminacare/pipeline-service/internal/domain"
)

func TestFlushOutboxPublishesOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, "pat_1")
	f.transition(t, order.OrderID, domain.OrderStatusPaid)
	f.transition(t, order.OrderID, domain.OrderStatusRegulatoryApproved)

	if err := f.service.FlushOutbox(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if got := len(f.domainPub.published()); got != 2 {
		t.Fatalf("expected 2 published events, got %d", got)
	}

	// A second flush finds nothing pending.
	if err := f.service.FlushOutbox(ctx); err != nil {
		t.Fatalf("second flush failed: %v", err)
	}
	if got := len(f.domainPub.published()); got != 2 {
		t.Fatalf("second flush re-published: got %d events", got)
	}
}

func TestFlushOutboxPreservesEnqueueOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, "pat_1")
	chain := []domain.OrderStatus{
		domain.OrderStatusPaid, domain.OrderStatusRegulatoryApproved,
		domain.OrderStatusImporting, domain.OrderStatusShipped, domain.OrderStatusDelivered,
	}
	for _, to := range chain {
		f.transition(t, order.OrderID, to)
	}
	if err := f.service.FlushOutbox(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	published := f.domainPub.published()
	if len(published) != len(chain) {
		t.Fatalf("expected %d events, got %d", len(chain), len(published))
	}
	for i := 1; i < len(published); i++ {
		if published[i].OccurredAt.Before(published[i-1].OccurredAt) {
			t.Fatalf("events out of order at %d", i)
		}
	}
}

func TestFlushOutboxRoutesFailuresToDLQ(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.service.domainEvents = &capturingDomainPublisher{fail: errors.New("broker unavailable")}

	order := f.createOrder(t, "pat_1")
	f.transition(t, order.OrderID, domain.OrderStatusPaid)

	if err := f.service.FlushOutbox(ctx); err == nil {
		t.Fatalf("flush should surface the publish error")
	}
	records := f.dlq.captured()
	if len(records) != 1 {
		t.Fatalf("expected 1 DLQ record, got %d", len(records))
	}
	if records[0].OriginalEvent.EventType != domain.EventOrderStatusChanged {
		t.Fatalf("unexpected DLQ event: %+v", records[0])
	}

	// Record stays pending for the next attempt.
	if got := f.pendingByType(t, domain.EventOrderStatusChanged); got != 1 {
		t.Fatalf("failed record should remain pending, got %d", got)
	}
}

func TestOutboxRecordRequiresPartitionKey(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if _, err := f.service.buildOutboxRecord(domain.EventOrderStatusChanged, "req_test", struct{}{}, "", f.now); !errors.Is(err, domain.ErrInvalidEnvelope) {
		t.Fatalf("expected ErrInvalidEnvelope for empty partition key, got %v", err)
	}
	if _, err := f.service.buildOutboxRecord(domain.EventOrderStatusChanged, "req_test", struct{}{}, "   ", f.now); !errors.Is(err, domain.ErrInvalidEnvelope) {
		t.Fatalf("expected ErrInvalidEnvelope for blank partition key, got %v", err)
	}
}

func TestFlushOutboxSendsAnalyticsEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, "pat_1")
	if _, err := f.service.AttachTracking(ctx, testActor(), AttachTrackingInput{OrderID: order.OrderID, Kind: "carrier", Code: "BR1"}); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if err := f.service.FlushOutbox(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	events := f.analytics.published()
	if len(events) != 1 || events[0].EventType != domain.EventOrderTrackingAttached {
		t.Fatalf("expected one tracking_attached analytics event, got %v", events)
	}
	if len(f.domainPub.published()) != 0 {
		t.Fatalf("analytics event must not reach the domain stream")
	}
}
