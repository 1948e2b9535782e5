// Package authz is the boundary to the identity/authorization module.
package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/slecomte/rinkside/internal/models"
)

// TeamReader is the slice of storage the verifier needs.
type TeamReader interface {
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
}

// CaptainVerifier answers "is this caller the captain of team X".
type CaptainVerifier struct {
	teams TeamReader
}

// NewCaptainVerifier creates a verifier backed by the team records.
func NewCaptainVerifier(teams TeamReader) *CaptainVerifier {
	return &CaptainVerifier{teams: teams}
}

// IsCaptain reports whether userID is the assigned captain of teamID.
func (v *CaptainVerifier) IsCaptain(ctx context.Context, userID, teamID uuid.UUID) (bool, error) {
	team, err := v.teams.GetTeam(ctx, teamID)
	if err != nil {
		return false, fmt.Errorf("failed to get team: %w", err)
	}
	return team.CaptainID != nil && *team.CaptainID == userID, nil
}
