package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/luminacare/pipeline-service/internal/domain"
)

func (s *Service) CreateStage(ctx context.Context, actor Actor, in CreateStageInput) (domain.Stage, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Stage{}, domain.ErrUnauthorized
	}
	in.RegistryID = strings.TrimSpace(in.RegistryID)
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Color = strings.ToLower(strings.TrimSpace(in.Color))
	if in.RegistryID == "" || in.Name == "" || !domain.IsValidStageSlug(in.Slug) || !domain.IsValidStageColor(in.Color) {
		return domain.Stage{}, domain.ErrInvalidInput
	}
	now := s.nowFn()
	row, err := s.stages.CreateTx(ctx, in.RegistryID, func(active []domain.Stage) (domain.Stage, error) {
		for _, st := range active {
			if st.Slug == in.Slug {
				return domain.Stage{}, domain.ErrDuplicateSlug
			}
		}
		return domain.Stage{
			StageID:     "stage_" + uuid.NewString(),
			RegistryID:  in.RegistryID,
			Name:        in.Name,
			Slug:        in.Slug,
			Description: strings.TrimSpace(in.Description),
			Color:       in.Color,
			Position:    len(active),
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}, nil
	})
	if err != nil {
		return domain.Stage{}, err
	}
	_ = s.enqueueStageCreated(ctx, row, actor.RequestID, now)
	return row, nil
}

func (s *Service) ListStages(ctx context.Context, actor Actor, registryID string) ([]domain.Stage, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return nil, domain.ErrUnauthorized
	}
	registryID = strings.TrimSpace(registryID)
	if registryID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.stages.ListActiveByRegistry(ctx, registryID)
}

// ReorderStage moves one active stage to targetIndex and persists only the
// positions that changed. Repeating the same command is a no-op with an empty
// change-set.
func (s *Service) ReorderStage(ctx context.Context, actor Actor, in ReorderStageInput) ([]domain.PositionChange, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return nil, domain.ErrUnauthorized
	}
	in.StageID = strings.TrimSpace(in.StageID)
	if in.StageID == "" {
		return nil, domain.ErrInvalidInput
	}
	stage, err := s.stages.GetByID(ctx, in.StageID)
	if err != nil {
		return nil, err
	}
	if !stage.Active {
		return nil, domain.ErrNotFound
	}
	changes, err := s.stages.ReorderTx(ctx, stage.RegistryID, func(active []domain.Stage) ([]domain.PositionChange, error) {
		return domain.ComputeReorder(active, in.StageID, in.TargetIndex)
	})
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		_ = s.enqueueStageReordered(ctx, stage, in.TargetIndex, len(changes), actor.RequestID, s.nowFn())
	}
	return changes, nil
}

// ArchiveStage deactivates a stage without renumbering the survivors; the
// dense range is recomputed lazily on the next reorder.
func (s *Service) ArchiveStage(ctx context.Context, actor Actor, stageID string) error {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.ErrUnauthorized
	}
	stageID = strings.TrimSpace(stageID)
	if stageID == "" {
		return domain.ErrInvalidInput
	}
	stage, err := s.stages.GetByID(ctx, stageID)
	if err != nil {
		return err
	}
	if !stage.Active {
		return nil
	}
	now := s.nowFn()
	stage.Active = false
	stage.UpdatedAt = now
	if err := s.stages.Update(ctx, stage); err != nil {
		return err
	}
	_ = s.enqueueStageArchived(ctx, stage, actor.RequestID, now)
	return nil
}
