package application

import (
	"context"
	"errors"
	"testing"

	"github.com/luminacare/pipeline-service/internal/domain"
)

func (f *fixture) createLead(t *testing.T, registryID, stageID string) domain.Lead {
	t.Helper()
	row, err := f.service.CreateLead(context.Background(), testActor(), CreateLeadInput{
		RegistryID: registryID, Name: "Maria Souza", StageID: stageID, EstimatedValue: "2500.00",
	})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}
	return row
}

func TestCreateLeadStartsAtNew(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	stage := f.createStage(t, "reg_1", "intake")
	lead := f.createLead(t, "reg_1", stage.StageID)
	if lead.Status != domain.LeadStatusNew {
		t.Fatalf("new lead should start at new, got %s", lead.Status)
	}
	if lead.StageID != stage.StageID {
		t.Fatalf("lead not placed in requested stage")
	}
	if lead.EstimatedValue == nil || lead.EstimatedValue.StringFixed(2) != "2500.00" {
		t.Fatalf("estimated value lost: %v", lead.EstimatedValue)
	}
}

func TestCreateLeadRejectsForeignOrArchivedStage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	other := f.createStage(t, "reg_2", "other")
	if _, err := f.service.CreateLead(ctx, testActor(), CreateLeadInput{RegistryID: "reg_1", Name: "X", StageID: other.StageID}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("stage from another registry should be rejected, got %v", err)
	}

	archived := f.createStage(t, "reg_1", "archived-soon")
	if err := f.service.ArchiveStage(ctx, testActor(), archived.StageID); err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if _, err := f.service.CreateLead(ctx, testActor(), CreateLeadInput{RegistryID: "reg_1", Name: "X", StageID: archived.StageID}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("archived stage should be rejected, got %v", err)
	}
}

func TestMoveLeadAcrossStagesRecordsHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	intake := f.createStage(t, "reg_1", "intake")
	review := f.createStage(t, "reg_1", "review")
	lead := f.createLead(t, "reg_1", intake.StageID)

	moved, err := f.service.MoveLeadToStage(ctx, testActor(), MoveLeadInput{LeadID: lead.LeadID, StageID: review.StageID})
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if moved.StageID != review.StageID {
		t.Fatalf("lead not moved, stage = %s", moved.StageID)
	}

	// Backward move is allowed.
	if _, err := f.service.MoveLeadToStage(ctx, testActor(), MoveLeadInput{LeadID: lead.LeadID, StageID: intake.StageID}); err != nil {
		t.Fatalf("backward move failed: %v", err)
	}

	history, err := f.service.GetLeadHistory(ctx, testActor(), lead.LeadID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].FromStageID != intake.StageID || history[0].ToStageID != review.StageID {
		t.Fatalf("first history entry wrong: %+v", history[0])
	}
	if history[1].ChangedBy != "usr_tester" {
		t.Fatalf("history missing actor: %+v", history[1])
	}
	if f.pendingByType(t, domain.EventLeadStageMoved) != 2 {
		t.Fatalf("expected 2 stage_moved events in outbox")
	}
}

func TestMoveLeadToArchivedStageFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	intake := f.createStage(t, "reg_1", "intake")
	gone := f.createStage(t, "reg_1", "gone")
	lead := f.createLead(t, "reg_1", intake.StageID)
	if err := f.service.ArchiveStage(ctx, testActor(), gone.StageID); err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if _, err := f.service.MoveLeadToStage(ctx, testActor(), MoveLeadInput{LeadID: lead.LeadID, StageID: gone.StageID}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("move to archived stage should fail, got %v", err)
	}
}

func TestLeadStatusAdvanceAndRegress(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lead := f.createLead(t, "reg_1", "")

	want := []domain.LeadStatus{
		domain.LeadStatusInitialContact,
		domain.LeadStatusAwaitingPrescription,
		domain.LeadStatusPrescriptionReceived,
		domain.LeadStatusPrescriptionValidated,
		domain.LeadStatusProductsReleased,
		domain.LeadStatusClosed,
	}
	for _, status := range want {
		row, err := f.service.AdvanceLeadStatus(ctx, testActor(), lead.LeadID)
		if err != nil {
			t.Fatalf("advance to %s failed: %v", status, err)
		}
		if row.Status != status {
			t.Fatalf("status = %s, want %s", row.Status, status)
		}
	}
	if _, err := f.service.AdvanceLeadStatus(ctx, testActor(), lead.LeadID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("advance past closed should fail, got %v", err)
	}

	row, err := f.service.RegressLeadStatus(ctx, testActor(), lead.LeadID)
	if err != nil {
		t.Fatalf("regress failed: %v", err)
	}
	if row.Status != domain.LeadStatusProductsReleased {
		t.Fatalf("regress landed at %s", row.Status)
	}

	if f.pendingByType(t, domain.EventLeadStatusChanged) != 7 {
		t.Fatalf("expected 7 status_changed events in outbox")
	}
}
