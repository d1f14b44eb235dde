package compliance

import (
	"time"

	"github.com/google/uuid"
)

// Priority ranks a remediation task.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities lists all priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// ActionItemStatus tracks the lifecycle of a remediation task. Transitions
// beyond open are driven externally; items are never hard-deleted.
type ActionItemStatus string

const (
	ActionItemOpen       ActionItemStatus = "open"
	ActionItemInProgress ActionItemStatus = "in_progress"
	ActionItemClosed     ActionItemStatus = "closed"
)

// ActionItem is a remediation task, optionally linked to a failed check.
type ActionItem struct {
	ID               uuid.UUID        `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Priority         Priority         `json:"priority"`
	Category         string           `json:"category,omitempty"`
	Status           ActionItemStatus `json:"status"`
	AssignedTo       string           `json:"assigned_to,omitempty"`
	DueDate          *time.Time       `json:"due_date,omitempty"`
	RelatedCheckType CheckType        `json:"related_check_type,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NewActionItem creates an open action item. An empty priority defaults to
// medium.
func NewActionItem(title, description string, priority Priority, at time.Time) *ActionItem {
	if priority == "" {
		priority = PriorityMedium
	}

	return &ActionItem{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      ActionItemOpen,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

// DueWithin reports whether the item has a due date inside [now, now+window].
// Items without a due date are never due.
func (a *ActionItem) DueWithin(now time.Time, window time.Duration) bool {
	if a.DueDate == nil {
		return false
	}
	return !a.DueDate.Before(now) && !a.DueDate.After(now.Add(window))
}

// PriorityForCheckStatus maps a failed check's status to the priority of the
// remediation item it spawns.
func PriorityForCheckStatus(status Status) Priority {
	switch status {
	case StatusCritical:
		return PriorityCritical
	case StatusNonCompliant:
		return PriorityHigh
	case StatusWarning:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
