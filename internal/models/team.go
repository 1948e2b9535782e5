package models

import (
	"time"

	"github.com/google/uuid"
)

// Team is a league team. A team is eligible for a draft only when it
// has an assigned captain.
type Team struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	CaptainID *uuid.UUID `json:"captain_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// HasCaptain reports whether the team has an assigned representative.
func (t Team) HasCaptain() bool {
	return t.CaptainID != nil && *t.CaptainID != uuid.Nil
}
