// Package order assigns the one-time random pick order for a draft.
package order

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/slecomte/rinkside/internal/models"
)

// Order-assignment precondition failures. Both are terminal for the call;
// nothing is written when either occurs.
var (
	ErrAlreadyAssigned = errors.New("draft order already assigned")
	ErrNoEligibleTeams = errors.New("no eligible teams for draft")
)

// OrderRepository defines what the assigner needs from storage.
// AssignDraftOrder persists all positions and marks the draft
// order-assigned in a single all-or-nothing commit, failing with
// ErrAlreadyAssigned if any order row exists for the draft.
type OrderRepository interface {
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	AssignDraftOrder(ctx context.Context, draftID uuid.UUID, order []models.DraftOrder) error
	GetDraftOrder(ctx context.Context, draftID uuid.UUID) ([]models.DraftOrder, error)
}

// App produces and persists the random team ordering for a draft.
type App struct {
	repo OrderRepository
	// shuffle permutes n elements with swap; replaced in tests for a
	// deterministic order.
	shuffle func(n int, swap func(i, j int))
}

// NewApp creates an order assigner using a uniform random shuffle.
func NewApp(repo OrderRepository) *App {
	return &App{repo: repo, shuffle: rand.Shuffle}
}

// AssignOrder draws a uniform random permutation over the eligible teams
// (those with an assigned captain) and persists one DraftOrder row per
// team, positions 1..N. Written exactly once per draft.
func (a *App) AssignOrder(ctx context.Context, draftID uuid.UUID) ([]models.DraftOrder, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if draft.OrderAssigned {
		return nil, ErrAlreadyAssigned
	}

	teams, err := a.repo.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	eligible := make([]models.Team, 0, len(teams))
	for _, t := range teams {
		if t.HasCaptain() {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleTeams
	}

	// Fisher-Yates over the eligible set.
	a.shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	order := make([]models.DraftOrder, len(eligible))
	for i, t := range eligible {
		order[i] = models.DraftOrder{
			DraftID:      draftID,
			TeamID:       t.ID,
			PickPosition: i + 1,
		}
	}

	if err := a.repo.AssignDraftOrder(ctx, draftID, order); err != nil {
		if errors.Is(err, ErrAlreadyAssigned) {
			return nil, ErrAlreadyAssigned
		}
		return nil, fmt.Errorf("failed to persist draft order: %w", err)
	}

	log.Info().
		Str("draft_id", draftID.String()).
		Int("teams", len(order)).
		Msg("draft order assigned")
	return order, nil
}

// GetOrder returns the persisted order for a draft sorted by position.
func (a *App) GetOrder(ctx context.Context, draftID uuid.UUID) ([]models.DraftOrder, error) {
	order, err := a.repo.GetDraftOrder(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft order: %w", err)
	}
	return order, nil
}
