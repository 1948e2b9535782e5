package draft

import (
	"github.com/google/uuid"
)

// CreateDraftRequest represents a request to create a new draft for a
// season cycle's redraft.
type CreateDraftRequest struct {
	ID           uuid.UUID `json:"id"`
	SeasonID     uuid.UUID `json:"season_id"`
	RosterTarget int       `json:"roster_target"`
}
