package domain

import (
	"errors"
	"testing"
)

func TestValidateOrderTransitionHappyPath(t *testing.T) {
	t.Parallel()

	chain := []OrderStatus{
		OrderStatusPending,
		OrderStatusPaid,
		OrderStatusRegulatoryApproved,
		OrderStatusImporting,
		OrderStatusShipped,
		OrderStatusDelivered,
	}
	for i := 0; i < len(chain)-1; i++ {
		if err := ValidateOrderTransition(chain[i], chain[i+1]); err != nil {
			t.Fatalf("%s -> %s should be allowed: %v", chain[i], chain[i+1], err)
		}
	}
}

func TestValidateOrderTransitionMatrix(t *testing.T) {
	t.Parallel()

	all := []OrderStatus{
		OrderStatusPending, OrderStatusPaid, OrderStatusRegulatoryApproved,
		OrderStatusImporting, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	}
	for _, from := range all {
		for _, to := range all {
			err := ValidateOrderTransition(from, to)
			switch {
			case from.Terminal():
				if !errors.Is(err, ErrTerminalState) {
					t.Fatalf("%s -> %s: expected ErrTerminalState, got %v", from, to, err)
				}
			case to == OrderStatusCancelled:
				if err != nil {
					t.Fatalf("%s -> cancelled should be allowed: %v", from, err)
				}
			case orderTransitions[from] == to:
				if err != nil {
					t.Fatalf("%s -> %s should be allowed: %v", from, to, err)
				}
			default:
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("%s -> %s: expected ErrInvalidTransition, got %v", from, to, err)
				}
			}
		}
	}
}

func TestValidateOrderTransitionRejectsSkipAndSameState(t *testing.T) {
	t.Parallel()

	if err := ValidateOrderTransition(OrderStatusPending, OrderStatusShipped); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("skip-ahead should be rejected, got %v", err)
	}
	if err := ValidateOrderTransition(OrderStatusPaid, OrderStatusPaid); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("same-state transition should be rejected, got %v", err)
	}
	if err := ValidateOrderTransition(OrderStatusPaid, OrderStatus("bogus")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("unknown target should be rejected, got %v", err)
	}
}

func TestValidateOrderTransitionTerminalStates(t *testing.T) {
	t.Parallel()

	if err := ValidateOrderTransition(OrderStatusDelivered, OrderStatusCancelled); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("delivered order must not be cancellable, got %v", err)
	}
	if err := ValidateOrderTransition(OrderStatusCancelled, OrderStatusPending); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("cancelled order must not be reactivatable, got %v", err)
	}
}

func TestAttachTrackingRoutesByKind(t *testing.T) {
	t.Parallel()

	o := Order{OrderID: "ord_1", Status: OrderStatusDelivered}
	if err := o.AttachTracking(TrackingKindCarrier, "BR123"); err != nil {
		t.Fatalf("carrier attach failed: %v", err)
	}
	if err := o.AttachTracking(TrackingKindRegulatory, "REG-9"); err != nil {
		t.Fatalf("regulatory attach failed: %v", err)
	}
	if err := o.AttachTracking(TrackingKindImport, "IMP-7"); err != nil {
		t.Fatalf("import attach failed: %v", err)
	}
	if o.TrackingNumber != "BR123" || o.RegulatoryTrackingCode != "REG-9" || o.ImportTrackingCode != "IMP-7" {
		t.Fatalf("tracking codes landed in wrong fields: %+v", o)
	}
	if o.Status != OrderStatusDelivered {
		t.Fatalf("attaching tracking must not touch status, got %s", o.Status)
	}

	// Last write wins per slot.
	if err := o.AttachTracking(TrackingKindCarrier, "BR456"); err != nil {
		t.Fatalf("carrier re-attach failed: %v", err)
	}
	if o.TrackingNumber != "BR456" {
		t.Fatalf("expected overwrite, got %s", o.TrackingNumber)
	}
}

func TestAttachTrackingRejectsBadInput(t *testing.T) {
	t.Parallel()

	o := Order{OrderID: "ord_1", Status: OrderStatusPending}
	if err := o.AttachTracking(TrackingKindCarrier, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank code should be rejected, got %v", err)
	}
	if err := o.AttachTracking(TrackingKind("postal"), "X1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown kind should be rejected, got %v", err)
	}
}

func TestParseTrackingKind(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]TrackingKind{
		"carrier":     TrackingKindCarrier,
		" Regulatory": TrackingKindRegulatory,
		"IMPORT":      TrackingKindImport,
	} {
		got, err := ParseTrackingKind(raw)
		if err != nil {
			t.Fatalf("parse %q failed: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q = %s, want %s", raw, got, want)
		}
	}
	if _, err := ParseTrackingKind("postal"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
