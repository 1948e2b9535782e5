package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftOrder is one team's slot in a draft's pick order.
// Written exactly once per draft; immutable thereafter.
type DraftOrder struct {
	DraftID      uuid.UUID `json:"draft_id"`
	TeamID       uuid.UUID `json:"team_id"`
	PickPosition int       `json:"pick_position"` // 1..N, unique within a draft
}

// DraftPick represents a single accepted pick in a draft.
// The ledger is append-only; a committed pick is never updated or deleted.
type DraftPick struct {
	ID         uuid.UUID `json:"id"`
	DraftID    uuid.UUID `json:"draft_id"`
	PickNumber int       `json:"pick_number"` // 1-based, dense, unique within a draft
	Round      int       `json:"round"`
	TeamID     uuid.UUID `json:"team_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	PickedAt   time.Time `json:"picked_at"`
}
