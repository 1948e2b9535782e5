package events

import (
	"time"
)

// Event type names shared by the outbox, the gateway and clients.
const (
	TypePickAccepted       = "pick_accepted"
	TypeDraftStatusChanged = "draft_status_changed"
)

// PickAcceptedPayload is the payload for a pick_accepted event.
type PickAcceptedPayload struct {
	PickID     string    `json:"pick_id"`
	DraftID    string    `json:"draft_id"`
	PickNumber int       `json:"pick_number"`
	Round      int       `json:"round"`
	TeamID     string    `json:"team_id"`
	PlayerID   string    `json:"player_id"`
	PickedAt   time.Time `json:"picked_at"`
}

// DraftStatusChangedPayload is the payload for a draft_status_changed event.
type DraftStatusChangedPayload struct {
	DraftID   string    `json:"draft_id"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}
