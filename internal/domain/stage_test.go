package domain

import (
	"errors"
	"testing"
)

func activeStages(ids ...string) []Stage {
	out := make([]Stage, 0, len(ids))
	for i, id := range ids {
		out = append(out, Stage{StageID: id, RegistryID: "reg_1", Position: i, Active: true})
	}
	return out
}

func TestComputeReorderMovesForward(t *testing.T) {
	t.Parallel()

	changes, err := ComputeReorder(activeStages("a", "b", "c", "d"), "a", 2)
	if err != nil {
		t.Fatalf("reorder failed: %v", err)
	}
	want := map[string]int{"b": 0, "c": 1, "a": 2}
	if len(changes) != len(want) {
		t.Fatalf("expected %d changes, got %d: %v", len(want), len(changes), changes)
	}
	for _, c := range changes {
		if want[c.StageID] != c.NewPosition {
			t.Fatalf("stage %s moved to %d, want %d", c.StageID, c.NewPosition, want[c.StageID])
		}
	}
}

func TestComputeReorderMovesBackward(t *testing.T) {
	t.Parallel()

	changes, err := ComputeReorder(activeStages("a", "b", "c", "d"), "d", 0)
	if err != nil {
		t.Fatalf("reorder failed: %v", err)
	}
	want := map[string]int{"d": 0, "a": 1, "b": 2, "c": 3}
	if len(changes) != len(want) {
		t.Fatalf("expected %d changes, got %d: %v", len(want), len(changes), changes)
	}
	for _, c := range changes {
		if want[c.StageID] != c.NewPosition {
			t.Fatalf("stage %s moved to %d, want %d", c.StageID, c.NewPosition, want[c.StageID])
		}
	}
}

func TestComputeReorderSamePositionIsNoop(t *testing.T) {
	t.Parallel()

	changes, err := ComputeReorder(activeStages("a", "b", "c"), "b", 1)
	if err != nil {
		t.Fatalf("reorder failed: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected no changes, got %v", changes)
	}
}

func TestComputeReorderDiffIsBounded(t *testing.T) {
	t.Parallel()

	stages := activeStages("a", "b", "c", "d", "e", "f", "g", "h")
	for from := range stages {
		for to := range stages {
			changes, err := ComputeReorder(stages, stages[from].StageID, to)
			if err != nil {
				t.Fatalf("reorder %d->%d failed: %v", from, to, err)
			}
			limit := from - to
			if limit < 0 {
				limit = -limit
			}
			limit++
			if len(changes) > limit {
				t.Fatalf("reorder %d->%d touched %d rows, limit %d", from, to, len(changes), limit)
			}
		}
	}
}

func TestComputeReorderRepairsArchiveGaps(t *testing.T) {
	t.Parallel()

	// Positions 0,2,4 as left behind by two archived stages.
	stages := []Stage{
		{StageID: "a", Position: 0, Active: true},
		{StageID: "b", Position: 2, Active: true},
		{StageID: "c", Position: 4, Active: true},
	}
	changes, err := ComputeReorder(stages, "c", 0)
	if err != nil {
		t.Fatalf("reorder failed: %v", err)
	}
	want := map[string]int{"c": 0, "a": 1, "b": 2}
	if len(changes) != len(want) {
		t.Fatalf("expected dense renumbering of %d rows, got %v", len(want), changes)
	}
	for _, c := range changes {
		if want[c.StageID] != c.NewPosition {
			t.Fatalf("stage %s moved to %d, want %d", c.StageID, c.NewPosition, want[c.StageID])
		}
	}
}

func TestComputeReorderOutOfRange(t *testing.T) {
	t.Parallel()

	if _, err := ComputeReorder(activeStages("a", "b"), "a", 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := ComputeReorder(activeStages("a", "b"), "a", -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for negative index, got %v", err)
	}
}

func TestComputeReorderUnknownStage(t *testing.T) {
	t.Parallel()

	if _, err := ComputeReorder(activeStages("a", "b"), "missing", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStageColorAndSlugValidation(t *testing.T) {
	t.Parallel()

	for _, c := range []string{"gray", "Teal", " BLUE "} {
		if !IsValidStageColor(c) {
			t.Fatalf("color %q should be accepted", c)
		}
	}
	for _, c := range []string{"", "magenta", "rebeccapurple"} {
		if IsValidStageColor(c) {
			t.Fatalf("color %q should be rejected", c)
		}
	}
	for _, s := range []string{"new-leads", "stage_1", "abc123"} {
		if !IsValidStageSlug(s) {
			t.Fatalf("slug %q should be accepted", s)
		}
	}
	for _, s := range []string{"", "New Leads", "slug!", "ÜBER"} {
		if IsValidStageSlug(s) {
			t.Fatalf("slug %q should be rejected", s)
		}
	}
}
