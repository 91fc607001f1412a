package domain

import (
	"strings"
	"time"
)

type Stage struct {
	StageID     string    `json:"stage_id"`
	RegistryID  string    `json:"registry_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	Position    int       `json:"position"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PositionChange is the minimal persistence diff produced by a reorder:
// only stages whose position actually moved are listed.
type PositionChange struct {
	StageID     string `json:"stage_id"`
	NewPosition int    `json:"new_position"`
}

func IsValidStageColor(c string) bool {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case "gray", "red", "orange", "amber", "yellow", "green", "teal", "blue", "indigo", "purple", "pink":
		return true
	default:
		return false
	}
}

func IsValidStageSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

// ComputeReorder moves stageID to targetIndex within the active list and
// returns only the changed positions. The input must be the registry's active
// stages ordered by position; walking the spliced list and assigning dense
// indexes also repairs any gaps left behind by archived stages.
func ComputeReorder(active []Stage, stageID string, targetIndex int) ([]PositionChange, error) {
	if targetIndex < 0 || targetIndex >= len(active) {
		return nil, ErrIndexOutOfRange
	}
	from := -1
	for i, s := range active {
		if s.StageID == stageID {
			from = i
			break
		}
	}
	if from == -1 {
		return nil, ErrNotFound
	}
	moved := active[from]
	rest := make([]Stage, 0, len(active))
	rest = append(rest, active[:from]...)
	rest = append(rest, active[from+1:]...)
	reordered := make([]Stage, 0, len(active))
	reordered = append(reordered, rest[:targetIndex]...)
	reordered = append(reordered, moved)
	reordered = append(reordered, rest[targetIndex:]...)
	changes := make([]PositionChange, 0, len(active))
	for i, s := range reordered {
		if s.Position != i {
			changes = append(changes, PositionChange{StageID: s.StageID, NewPosition: i})
		}
	}
	return changes, nil
}
