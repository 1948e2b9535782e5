package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus defines the lifecycle status of a draft.
type DraftStatus string

const (
	DraftStatusPending       DraftStatus = "pending"
	DraftStatusOrderAssigned DraftStatus = "order_assigned"
	DraftStatusInProgress    DraftStatus = "in_progress"
	DraftStatusCompleted     DraftStatus = "completed"
)

// Draft represents one draft instance for a season cycle.
type Draft struct {
	ID            uuid.UUID   `json:"id"`
	SeasonID      uuid.UUID   `json:"season_id"`
	Status        DraftStatus `json:"status"`
	OrderAssigned bool        `json:"order_assigned"`
	RosterTarget  int         `json:"roster_target"` // picks per team before the draft completes
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
}
