package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "pending"
	OrderStatusPaid               OrderStatus = "paid"
	OrderStatusRegulatoryApproved OrderStatus = "regulatory_approved"
	OrderStatusImporting          OrderStatus = "importing"
	OrderStatusShipped            OrderStatus = "shipped"
	OrderStatusDelivered          OrderStatus = "delivered"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

type TrackingKind string

const (
	TrackingKindCarrier    TrackingKind = "carrier"
	TrackingKindRegulatory TrackingKind = "regulatory"
	TrackingKindImport     TrackingKind = "import"
)

type Order struct {
	OrderID                string           `json:"order_id"`
	PatientID              string           `json:"patient_id"`
	Status                 OrderStatus      `json:"status"`
	Total                  *decimal.Decimal `json:"total,omitempty"`
	TrackingNumber         string           `json:"tracking_number,omitempty"`
	RegulatoryTrackingCode string           `json:"regulatory_tracking_code,omitempty"`
	ImportTrackingCode     string           `json:"import_tracking_code,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// orderTransitions is the single canonical transition table. Cancellation from
// any non-terminal state is handled in ValidateOrderTransition rather than
// listed per row.
var orderTransitions = map[OrderStatus]OrderStatus{
	OrderStatusPending:            OrderStatusPaid,
	OrderStatusPaid:               OrderStatusRegulatoryApproved,
	OrderStatusRegulatoryApproved: OrderStatusImporting,
	OrderStatusImporting:          OrderStatusShipped,
	OrderStatusShipped:            OrderStatusDelivered,
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func IsValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusRegulatoryApproved,
		OrderStatusImporting, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// ValidateOrderTransition is the hard gate on status writes. Tracking codes are
// deliberately not consulted; they are informational side-channels, never gates.
func ValidateOrderTransition(from, to OrderStatus) error {
	if from.Terminal() {
		return ErrTerminalState
	}
	if !IsValidOrderStatus(to) {
		return ErrInvalidTransition
	}
	if to == OrderStatusCancelled {
		return nil
	}
	if orderTransitions[from] != to {
		return ErrInvalidTransition
	}
	return nil
}

func ParseTrackingKind(k string) (TrackingKind, error) {
	switch TrackingKind(strings.ToLower(strings.TrimSpace(k))) {
	case TrackingKindCarrier:
		return TrackingKindCarrier, nil
	case TrackingKindRegulatory:
		return TrackingKindRegulatory, nil
	case TrackingKindImport:
		return TrackingKindImport, nil
	default:
		return "", ErrInvalidInput
	}
}

// AttachTracking sets one tracking code, last write wins. It is valid in every
// status including terminal ones; the three codes arrive from three independent
// external systems on their own schedules.
func (o *Order) AttachTracking(kind TrackingKind, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidInput
	}
	switch kind {
	case TrackingKindCarrier:
		o.TrackingNumber = code
	case TrackingKindRegulatory:
		o.RegulatoryTrackingCode = code
	case TrackingKindImport:
		o.ImportTrackingCode = code
	default:
		return ErrInvalidInput
	}
	return nil
}
