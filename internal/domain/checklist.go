package domain

import (
	"math"
	"strings"
	"time"
)

// ChecklistItem is one per-event preparation item. Completion is binary.
type ChecklistItem struct {
	ID           string
	EventID      string
	ItemName     string
	Category     string
	AssignedRole string
	Completed    bool
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ChecklistItemInput holds write-time values for creating one checklist item.
type ChecklistItemInput struct {
	ID           string
	EventID      string
	ItemName     string
	Category     string
	AssignedRole string
	Notes        string
}

// NewChecklistItem validates one checklist item create request.
func NewChecklistItem(in ChecklistItemInput, now time.Time) (ChecklistItem, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.EventID = strings.TrimSpace(in.EventID)
	in.ItemName = strings.TrimSpace(in.ItemName)
	if in.ID == "" || in.EventID == "" {
		return ChecklistItem{}, ErrInvalidID
	}
	if in.ItemName == "" {
		return ChecklistItem{}, ErrInvalidName
	}
	return ChecklistItem{
		ID:           in.ID,
		EventID:      in.EventID,
		ItemName:     in.ItemName,
		Category:     strings.TrimSpace(in.Category),
		AssignedRole: strings.TrimSpace(in.AssignedRole),
		Notes:        strings.TrimSpace(in.Notes),
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}, nil
}

// SetCompleted toggles completion.
func (c *ChecklistItem) SetCompleted(done bool, now time.Time) {
	c.Completed = done
	c.UpdatedAt = now.UTC()
}

// ChecklistProgress returns round(100*completed/total), or 0 for an empty list.
func ChecklistProgress(items []ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, item := range items {
		if item.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) * 100 / float64(len(items))))
}

// ChecklistItemsFor returns the items whose assigned role names person.
// Unknown people yield an empty list, not an error.
func ChecklistItemsFor(person string, items []ChecklistItem) []ChecklistItem {
	out := []ChecklistItem{}
	for _, item := range items {
		if SamePerson(item.AssignedRole, person) {
			out = append(out, item)
		}
	}
	return out
}
