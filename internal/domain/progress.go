package domain

import "time"

type ProcessStep int

const (
	StepConsultation ProcessStep = iota
	StepPrescription
	StepRegulatory
	StepOrder
	StepShipping
	StepDelivered
)

var processStepLabels = []string{"consultation", "prescription", "regulatory", "order", "shipping", "delivered"}

func (s ProcessStep) String() string {
	if s < StepConsultation || int(s) >= len(processStepLabels) {
		return "unknown"
	}
	return processStepLabels[s]
}

type Prescription struct {
	PrescriptionID string    `json:"prescription_id"`
	PatientID      string    `json:"patient_id"`
	Status         string    `json:"status"`
	IssuedAt       time.Time `json:"issued_at"`
}

type RegulatoryApproval struct {
	ApprovalID string    `json:"approval_id"`
	PatientID  string    `json:"patient_id"`
	Status     string    `json:"status"`
	FiledAt    time.Time `json:"filed_at"`
}

// RecordBundle is the read-side snapshot a progress projection runs over.
// Source records change independently and out of order, so the projection is
// recomputed on every read and never persisted.
type RecordBundle struct {
	Prescriptions []Prescription       `json:"prescriptions"`
	Approvals     []RegulatoryApproval `json:"approvals"`
	Orders        []Order              `json:"orders"`
}

type StepState string

const (
	StepStateCompleted StepState = "completed"
	StepStateCurrent   StepState = "current"
	StepStatePending   StepState = "pending"
)

type StepView struct {
	Step  ProcessStep `json:"step"`
	Label string      `json:"label"`
	State StepState   `json:"state"`
}

// ProjectStep returns the position of the furthest-advanced record in the
// bundle. An empty bundle projects to consultation, never an error. Cancelled
// orders no longer advance the patient's progress and are skipped.
func ProjectStep(b RecordBundle) ProcessStep {
	step := StepConsultation
	if len(b.Prescriptions) > 0 {
		step = StepPrescription
	}
	if len(b.Approvals) > 0 && step < StepRegulatory {
		step = StepRegulatory
	}
	for _, o := range b.Orders {
		var s ProcessStep
		switch o.Status {
		case OrderStatusCancelled:
			continue
		case OrderStatusDelivered:
			s = StepDelivered
		case OrderStatusShipped:
			s = StepShipping
		default:
			s = StepOrder
		}
		if s > step {
			step = s
		}
	}
	return step
}

// StepStates renders the fixed step sequence around the projected index:
// everything below is completed, the index itself is current, the rest pending.
func StepStates(current ProcessStep) []StepView {
	views := make([]StepView, 0, len(processStepLabels))
	for i := range processStepLabels {
		state := StepStatePending
		switch {
		case ProcessStep(i) < current:
			state = StepStateCompleted
		case ProcessStep(i) == current:
			state = StepStateCurrent
		}
		views = append(views, StepView{Step: ProcessStep(i), Label: processStepLabels[i], State: state})
	}
	return views
}
