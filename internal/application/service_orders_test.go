package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/luminacare/pipeline-service/internal/contracts"
	"github.com/luminacare/pipeline-service/internal/domain"
)

func (f *fixture) createOrder(t *testing.T, patientID string) domain.Order {
	t.Helper()
	row, err := f.service.CreateOrder(context.Background(), testActor(), CreateOrderInput{PatientID: patientID, Total: "150.00"})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return row
}

func (f *fixture) transition(t *testing.T, orderID string, to domain.OrderStatus) domain.Order {
	t.Helper()
	row, err := f.service.TransitionOrder(context.Background(), testActor(), TransitionOrderInput{OrderID: orderID, NewStatus: string(to)})
	if err != nil {
		t.Fatalf("transition to %s: %v", to, err)
	}
	return row
}

func TestTransitionOrderFullChain(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.createOrder(t, "pat_1")
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("new order should be pending, got %s", order.Status)
	}

	for _, to := range []domain.OrderStatus{
		domain.OrderStatusPaid,
		domain.OrderStatusRegulatoryApproved,
		domain.OrderStatusImporting,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		order = f.transition(t, order.OrderID, to)
		if order.Status != to {
			t.Fatalf("status = %s, want %s", order.Status, to)
		}
	}

	// One event per accepted transition.
	if got := f.pendingByType(t, domain.EventOrderStatusChanged); got != 5 {
		t.Fatalf("expected 5 status_changed events in outbox, got %d", got)
	}
}

func TestTransitionOrderRejectedWritesNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, "pat_1")

	if _, err := f.service.TransitionOrder(ctx, testActor(), TransitionOrderInput{OrderID: order.OrderID, NewStatus: "shipped"}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	reloaded, err := f.service.GetOrder(ctx, testActor(), order.OrderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if reloaded.Status != domain.OrderStatusPending {
		t.Fatalf("rejected transition must not change status, got %s", reloaded.Status)
	}
	if got := f.pendingByType(t, domain.EventOrderStatusChanged); got != 0 {
		t.Fatalf("rejected transition must not enqueue events, got %d", got)
	}
}

func TestTransitionOrderCancellation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	order := f.createOrder(t, "pat_1")
	f.transition(t, order.OrderID, domain.OrderStatusPaid)
	f.transition(t, order.OrderID, domain.OrderStatusCancelled)

	if _, err := f.service.TransitionOrder(ctx, testActor(), TransitionOrderInput{OrderID: order.OrderID, NewStatus: "pending"}); !errors.Is(err, domain.ErrTerminalState) {
		t.Fatalf("cancelled order must be immutable, got %v", err)
	}

	delivered := f.createOrder(t, "pat_2")
	for _, to := range []domain.OrderStatus{
		domain.OrderStatusPaid, domain.OrderStatusRegulatoryApproved,
		domain.OrderStatusImporting, domain.OrderStatusShipped, domain.OrderStatusDelivered,
	} {
		f.transition(t, delivered.OrderID, to)
	}
	if _, err := f.service.TransitionOrder(ctx, testActor(), TransitionOrderInput{OrderID: delivered.OrderID, NewStatus: "cancelled"}); !errors.Is(err, domain.ErrTerminalState) {
		t.Fatalf("delivered order must not be cancellable, got %v", err)
	}
}

func TestAttachTrackingIndependentOfStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, "pat_1")

	// Attach all three codes while still pending.
	for kind, code := range map[string]string{"carrier": "BR123", "regulatory": "ANVISA-1", "import": "IMP-22"} {
		if _, err := f.service.AttachTracking(ctx, testActor(), AttachTrackingInput{OrderID: order.OrderID, Kind: kind, Code: code}); err != nil {
			t.Fatalf("attach %s failed: %v", kind, err)
		}
	}
	reloaded, err := f.service.GetOrder(ctx, testActor(), order.OrderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if reloaded.TrackingNumber != "BR123" || reloaded.RegulatoryTrackingCode != "ANVISA-1" || reloaded.ImportTrackingCode != "IMP-22" {
		t.Fatalf("tracking codes misrouted: %+v", reloaded)
	}
	if reloaded.Status != domain.OrderStatusPending {
		t.Fatalf("attaching tracking must not advance status, got %s", reloaded.Status)
	}

	// Still writable after cancellation.
	f.transition(t, order.OrderID, domain.OrderStatusCancelled)
	updated, err := f.service.AttachTracking(ctx, testActor(), AttachTrackingInput{OrderID: order.OrderID, Kind: "carrier", Code: "BR999"})
	if err != nil {
		t.Fatalf("attach on terminal order failed: %v", err)
	}
	if updated.TrackingNumber != "BR999" {
		t.Fatalf("expected overwrite on terminal order, got %s", updated.TrackingNumber)
	}

	if _, err := f.service.AttachTracking(ctx, testActor(), AttachTrackingInput{OrderID: order.OrderID, Kind: "postal", Code: "X"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown tracking kind should be rejected, got %v", err)
	}
}

func TestTransitionEventPayload(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.createOrder(t, "pat_1")
	f.transition(t, order.OrderID, domain.OrderStatusPaid)

	pending, err := f.repos.Outbox.ListPending(context.Background(), 0)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected exactly one outbox record, got %d", len(pending))
	}
	env := pending[0].Envelope
	if env.EventType != domain.EventOrderStatusChanged || env.EventClass != domain.CanonicalEventClassDomain {
		t.Fatalf("unexpected envelope header: %+v", env)
	}
	if env.PartitionKey != order.OrderID || env.PartitionKeyPath != "data.order_id" {
		t.Fatalf("unexpected partitioning: %+v", env)
	}
	var payload contracts.OrderStatusChangedPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.PreviousStatus != "pending" || payload.NewStatus != "paid" || payload.OrderID != order.OrderID {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
