package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeadStatus string

const (
	LeadStatusNew                   LeadStatus = "new"
	LeadStatusInitialContact        LeadStatus = "initial_contact"
	LeadStatusAwaitingPrescription  LeadStatus = "awaiting_prescription"
	LeadStatusPrescriptionReceived  LeadStatus = "prescription_received"
	LeadStatusPrescriptionValidated LeadStatus = "prescription_validated"
	LeadStatusProductsReleased      LeadStatus = "products_released"
	LeadStatusClosed                LeadStatus = "closed"
)

// leadStatusOrder is the legacy linear pipeline. Leads move along it one step
// at a time; there is no skip-ahead.
var leadStatusOrder = []LeadStatus{
	LeadStatusNew,
	LeadStatusInitialContact,
	LeadStatusAwaitingPrescription,
	LeadStatusPrescriptionReceived,
	LeadStatusPrescriptionValidated,
	LeadStatusProductsReleased,
	LeadStatusClosed,
}

type Lead struct {
	LeadID              string           `json:"lead_id"`
	RegistryID          string           `json:"registry_id"`
	StageID             string           `json:"stage_id,omitempty"`
	Status              LeadStatus       `json:"status"`
	Name                string           `json:"name"`
	EstimatedValue      *decimal.Decimal `json:"estimated_value,omitempty"`
	AssignedAffiliateID string           `json:"assigned_affiliate_id,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// LeadStageChange is one entry of the lead's movement ledger. Both kanban
// moves and legacy status moves are appended here.
type LeadStageChange struct {
	ChangeID    string    `json:"change_id"`
	LeadID      string    `json:"lead_id"`
	FromStageID string    `json:"from_stage_id,omitempty"`
	ToStageID   string    `json:"to_stage_id,omitempty"`
	FromStatus  string    `json:"from_status,omitempty"`
	ToStatus    string    `json:"to_status,omitempty"`
	ChangedBy   string    `json:"changed_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func leadStatusIndex(s LeadStatus) int {
	for i, v := range leadStatusOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// NextLeadStatus returns the status one step forward. Closed is terminal.
func NextLeadStatus(s LeadStatus) (LeadStatus, error) {
	i := leadStatusIndex(s)
	if i < 0 || i == len(leadStatusOrder)-1 {
		return "", ErrInvalidTransition
	}
	return leadStatusOrder[i+1], nil
}

// PrevLeadStatus returns the status one step backward. New has no predecessor.
func PrevLeadStatus(s LeadStatus) (LeadStatus, error) {
	i := leadStatusIndex(s)
	if i <= 0 {
		return "", ErrInvalidTransition
	}
	return leadStatusOrder[i-1], nil
}

func IsValidLeadStatus(s LeadStatus) bool { return leadStatusIndex(s) >= 0 }
