package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/luminacare/pipeline-service/internal/domain"
	"github.com/shopspring/decimal"
)

func (s *Service) CreateLead(ctx context.Context, actor Actor, in CreateLeadInput) (domain.Lead, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Lead{}, domain.ErrUnauthorized
	}
	in.RegistryID = strings.TrimSpace(in.RegistryID)
	in.Name = strings.TrimSpace(in.Name)
	in.StageID = strings.TrimSpace(in.StageID)
	if in.RegistryID == "" || in.Name == "" {
		return domain.Lead{}, domain.ErrInvalidInput
	}
	var estimated *decimal.Decimal
	if raw := strings.TrimSpace(in.EstimatedValue); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil || v.IsNegative() {
			return domain.Lead{}, domain.ErrInvalidInput
		}
		estimated = &v
	}
	if in.StageID != "" {
		stage, err := s.stages.GetByID(ctx, in.StageID)
		if err != nil {
			return domain.Lead{}, err
		}
		if !stage.Active || stage.RegistryID != in.RegistryID {
			return domain.Lead{}, domain.ErrInvalidInput
		}
	}
	now := s.nowFn()
	lead := domain.Lead{
		LeadID:              "lead_" + uuid.NewString(),
		RegistryID:          in.RegistryID,
		StageID:             in.StageID,
		Status:              domain.LeadStatusNew,
		Name:                in.Name,
		EstimatedValue:      estimated,
		AssignedAffiliateID: strings.TrimSpace(in.AssignedAffiliateID),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// MoveLeadToStage moves a lead across kanban columns. Forward and backward
// moves are both explicit commands; the lead is never deleted by the pipeline.
func (s *Service) MoveLeadToStage(ctx context.Context, actor Actor, in MoveLeadInput) (domain.Lead, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Lead{}, domain.ErrUnauthorized
	}
	in.LeadID = strings.TrimSpace(in.LeadID)
	in.StageID = strings.TrimSpace(in.StageID)
	if in.LeadID == "" || in.StageID == "" {
		return domain.Lead{}, domain.ErrInvalidInput
	}
	stage, err := s.stages.GetByID(ctx, in.StageID)
	if err != nil {
		return domain.Lead{}, err
	}
	if !stage.Active {
		return domain.Lead{}, domain.ErrNotFound
	}
	now := s.nowFn()
	var fromStageID string
	lead, err := s.leads.UpdateTx(ctx, in.LeadID, func(lead *domain.Lead) error {
		if lead.RegistryID != stage.RegistryID {
			return domain.ErrInvalidInput
		}
		fromStageID = lead.StageID
		lead.StageID = stage.StageID
		lead.UpdatedAt = now
		return nil
	})
	if err != nil {
		return domain.Lead{}, err
	}
	s.appendLeadHistory(ctx, domain.LeadStageChange{
		LeadID: lead.LeadID, FromStageID: fromStageID, ToStageID: stage.StageID,
		ChangedBy: actor.SubjectID, OccurredAt: now,
	})
	_ = s.enqueueLeadStageMoved(ctx, lead, fromStageID, actor.RequestID, now)
	return lead, nil
}

// AdvanceLeadStatus moves the lead one step forward along the legacy linear
// pipeline. There is no skip-ahead; closed is terminal.
func (s *Service) AdvanceLeadStatus(ctx context.Context, actor Actor, leadID string) (domain.Lead, error) {
	return s.moveLeadStatus(ctx, actor, leadID, domain.NextLeadStatus)
}

// RegressLeadStatus moves the lead one step backward.
func (s *Service) RegressLeadStatus(ctx context.Context, actor Actor, leadID string) (domain.Lead, error) {
	return s.moveLeadStatus(ctx, actor, leadID, domain.PrevLeadStatus)
}

func (s *Service) moveLeadStatus(ctx context.Context, actor Actor, leadID string, step func(domain.LeadStatus) (domain.LeadStatus, error)) (domain.Lead, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Lead{}, domain.ErrUnauthorized
	}
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return domain.Lead{}, domain.ErrInvalidInput
	}
	now := s.nowFn()
	var previous domain.LeadStatus
	lead, err := s.leads.UpdateTx(ctx, leadID, func(lead *domain.Lead) error {
		next, err := step(lead.Status)
		if err != nil {
			return err
		}
		previous = lead.Status
		lead.Status = next
		lead.UpdatedAt = now
		return nil
	})
	if err != nil {
		return domain.Lead{}, err
	}
	s.appendLeadHistory(ctx, domain.LeadStageChange{
		LeadID: lead.LeadID, FromStatus: string(previous), ToStatus: string(lead.Status),
		ChangedBy: actor.SubjectID, OccurredAt: now,
	})
	_ = s.enqueueLeadStatusChanged(ctx, lead, previous, actor.RequestID, now)
	return lead, nil
}

func (s *Service) GetLeadHistory(ctx context.Context, actor Actor, leadID string) ([]domain.LeadStageChange, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return nil, domain.ErrUnauthorized
	}
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.leads.GetByID(ctx, leadID); err != nil {
		return nil, err
	}
	return s.leadHistory.ListByLeadID(ctx, leadID)
}

func (s *Service) appendLeadHistory(ctx context.Context, row domain.LeadStageChange) {
	if s.leadHistory == nil {
		return
	}
	row.ChangeID = "chg_" + uuid.NewString()
	_ = s.leadHistory.Append(ctx, row)
}
