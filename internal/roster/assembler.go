// Package roster builds the read-side view of a team's drafted roster.
package roster

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/slecomte/rinkside/internal/models"
	"github.com/slecomte/rinkside/internal/rating"
)

// LedgerReader is the slice of storage the assembler reads. It never
// mutates anything.
type LedgerReader interface {
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	ListTeamPicks(ctx context.Context, draftID, teamID uuid.UUID) ([]models.DraftPick, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
}

// RosterPlayer is one drafted player with the pick that acquired them.
type RosterPlayer struct {
	Pick   models.DraftPick `json:"pick"`
	Player models.Player    `json:"player"`
	Grade  models.Grade     `json:"grade"`
}

// TeamRoster is a team's accepted picks with position and rating
// composition, for display.
type TeamRoster struct {
	DraftID        uuid.UUID               `json:"draft_id"`
	TeamID         uuid.UUID               `json:"team_id"`
	Players        []RosterPlayer          `json:"players"`
	PositionCounts map[models.Position]int `json:"position_counts"`
	GradeCounts    map[models.Grade]int    `json:"grade_counts"`
}

// Assembler aggregates ledger rows into display rosters. Pure read side:
// recomputing with no intervening picks yields identical output.
type Assembler struct {
	reader  LedgerReader
	ratings *rating.Service
}

// NewAssembler creates a roster assembler.
func NewAssembler(reader LedgerReader, ratings *rating.Service) *Assembler {
	return &Assembler{reader: reader, ratings: ratings}
}

// AssembleRoster groups a team's accepted picks and computes the
// position and grade composition.
func (a *Assembler) AssembleRoster(ctx context.Context, draftID, teamID uuid.UUID) (*TeamRoster, error) {
	draft, err := a.reader.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	picks, err := a.reader.ListTeamPicks(ctx, draftID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team picks: %w", err)
	}
	players, err := a.reader.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	grades, err := a.ratings.SeasonGrades(ctx, draft.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to load season grades: %w", err)
	}

	byID := make(map[uuid.UUID]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	sort.Slice(picks, func(i, j int) bool { return picks[i].PickNumber < picks[j].PickNumber })

	r := &TeamRoster{
		DraftID:        draftID,
		TeamID:         teamID,
		Players:        make([]RosterPlayer, 0, len(picks)),
		PositionCounts: make(map[models.Position]int),
		GradeCounts:    make(map[models.Grade]int),
	}
	for _, pk := range picks {
		player := byID[pk.PlayerID]
		grade, ok := grades[pk.PlayerID]
		if !ok {
			grade = models.GradeDMinus
		}
		r.Players = append(r.Players, RosterPlayer{Pick: pk, Player: player, Grade: grade})
		r.PositionCounts[player.Position]++
		r.GradeCounts[grade]++
	}
	return r, nil
}
