package pick

import (
	"github.com/google/uuid"
	"github.com/slecomte/rinkside/internal/draft/outbox"
	"github.com/slecomte/rinkside/internal/models"
)

// SubmitPickRequest is one representative's attempt to draft a player.
type SubmitPickRequest struct {
	DraftID  uuid.UUID `json:"draft_id"`
	TeamID   uuid.UUID `json:"team_id"`
	PlayerID uuid.UUID `json:"player_id"`
	UserID   uuid.UUID `json:"user_id"` // resolved caller identity
}

// AppendPickRequest is the atomic ledger append handed to storage: the
// pick row, the outbox events describing it, and whether this pick
// completes the draft. All writes commit together or not at all.
type AppendPickRequest struct {
	Pick          models.DraftPick
	CompleteDraft bool
	Events        []outbox.Event
}

// PoolStatus describes a player's standing in a draft's draftable pool.
type PoolStatus struct {
	Eligible bool // player exists in the pool universe
	Picked   bool // a ledger row already references the player
}

// Snapshot is the reconciliation view of a draft: everything a client
// needs to recompute derived state (turn, roster) after a reconnect,
// without replaying missed events.
type Snapshot struct {
	Draft          *models.Draft       `json:"draft"`
	Order          []models.DraftOrder `json:"order"`
	PickCount      int                 `json:"pick_count"`
	NextPickNumber int                 `json:"next_pick_number"`
	OnClockTeamID  *uuid.UUID          `json:"on_clock_team_id,omitempty"`
}

// PoolPlayer is a draftable-pool entry joined with its computed rating.
type PoolPlayer struct {
	Player models.Player `json:"player"`
	Grade  models.Grade  `json:"grade"`
}
