package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/luminacare/pipeline-service/internal/domain"
	"github.com/luminacare/pipeline-service/internal/ports"
	"github.com/shopspring/decimal"
)

func (s *Service) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (domain.Order, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Order{}, domain.ErrUnauthorized
	}
	in.PatientID = strings.TrimSpace(in.PatientID)
	if in.PatientID == "" {
		return domain.Order{}, domain.ErrInvalidInput
	}
	var total *decimal.Decimal
	if raw := strings.TrimSpace(in.Total); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil || v.IsNegative() {
			return domain.Order{}, domain.ErrInvalidInput
		}
		total = &v
	}
	now := s.nowFn()
	order := domain.Order{
		OrderID:   "ord_" + uuid.NewString(),
		PatientID: in.PatientID,
		Status:    domain.OrderStatusPending,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, actor Actor, orderID string) (domain.Order, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Order{}, domain.ErrUnauthorized
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, domain.ErrInvalidInput
	}
	return s.orders.GetByID(ctx, orderID)
}

// TransitionOrder advances the order along the canonical status table. The
// status write and the outbox record are persisted in the same transaction, so
// every accepted transition emits its event exactly once.
func (s *Service) TransitionOrder(ctx context.Context, actor Actor, in TransitionOrderInput) (domain.Order, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Order{}, domain.ErrUnauthorized
	}
	in.OrderID = strings.TrimSpace(in.OrderID)
	newStatus := domain.OrderStatus(strings.ToLower(strings.TrimSpace(in.NewStatus)))
	if in.OrderID == "" || !domain.IsValidOrderStatus(newStatus) {
		return domain.Order{}, domain.ErrInvalidInput
	}
	now := s.nowFn()
	return s.orders.UpdateTx(ctx, in.OrderID, func(order *domain.Order) (*ports.OutboxRecord, error) {
		if err := domain.ValidateOrderTransition(order.Status, newStatus); err != nil {
			return nil, err
		}
		previous := order.Status
		order.Status = newStatus
		order.UpdatedAt = now
		rec, err := s.outboxRecordForStatusChange(*order, previous, actor.RequestID, now)
		if err != nil {
			return nil, err
		}
		return rec, nil
	})
}

// AttachTracking writes one tracking code. It is purely additive: never
// validated against status, never required for any transition, and still
// accepted on terminal orders.
func (s *Service) AttachTracking(ctx context.Context, actor Actor, in AttachTrackingInput) (domain.Order, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Order{}, domain.ErrUnauthorized
	}
	in.OrderID = strings.TrimSpace(in.OrderID)
	if in.OrderID == "" {
		return domain.Order{}, domain.ErrInvalidInput
	}
	kind, err := domain.ParseTrackingKind(in.Kind)
	if err != nil {
		return domain.Order{}, err
	}
	now := s.nowFn()
	return s.orders.UpdateTx(ctx, in.OrderID, func(order *domain.Order) (*ports.OutboxRecord, error) {
		if err := order.AttachTracking(kind, in.Code); err != nil {
			return nil, err
		}
		order.UpdatedAt = now
		rec, err := s.outboxRecordForTrackingAttached(*order, kind, actor.RequestID, now)
		if err != nil {
			return nil, err
		}
		return rec, nil
	})
}

func trackingCode(order domain.Order, kind domain.TrackingKind) string {
	switch kind {
	case domain.TrackingKindCarrier:
		return order.TrackingNumber
	case domain.TrackingKindRegulatory:
		return order.RegulatoryTrackingCode
	case domain.TrackingKindImport:
		return order.ImportTrackingCode
	default:
		return ""
	}
}

func newRecordID() string { return "obx_" + uuid.NewString() }
