package application

import (
	"context"
	"strings"

	"github.com/luminacare/pipeline-service/internal/domain"
)

type ProgressView struct {
	PatientID   string
	CurrentStep domain.ProcessStep
	Steps       []domain.StepView
}

// GetPatientProgress loads the patient's record bundle and projects it onto
// the fixed step sequence. The projection is recomputed on every read; source
// records arrive independently and out of order.
func (s *Service) GetPatientProgress(ctx context.Context, actor Actor, patientID string) (ProgressView, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return ProgressView{}, domain.ErrUnauthorized
	}
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return ProgressView{}, domain.ErrInvalidInput
	}
	var bundle domain.RecordBundle
	if s.prescriptions != nil {
		rows, err := s.prescriptions.ListByPatientID(ctx, patientID)
		if err != nil {
			return ProgressView{}, err
		}
		bundle.Prescriptions = rows
	}
	if s.approvals != nil {
		rows, err := s.approvals.ListByPatientID(ctx, patientID)
		if err != nil {
			return ProgressView{}, err
		}
		bundle.Approvals = rows
	}
	if s.orders != nil {
		rows, err := s.orders.ListByPatientID(ctx, patientID)
		if err != nil {
			return ProgressView{}, err
		}
		bundle.Orders = rows
	}
	step := domain.ProjectStep(bundle)
	return ProgressView{PatientID: patientID, CurrentStep: step, Steps: domain.StepStates(step)}, nil
}
