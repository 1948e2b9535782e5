package pick

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/slecomte/rinkside/internal/draft/events"
	"github.com/slecomte/rinkside/internal/draft/outbox"
	"github.com/slecomte/rinkside/internal/draft/turn"
	"github.com/slecomte/rinkside/internal/models"
	"github.com/slecomte/rinkside/internal/rating"
)

// LedgerRepository defines what the ledger app needs from storage.
// AppendPick must be atomic: the commit either lands the pick row, its
// outbox events and the optional completion transition together, or
// nothing, with uniqueness enforced on (draft, pick_number) and
// (draft, player).
type LedgerRepository interface {
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	GetDraftOrder(ctx context.Context, draftID uuid.UUID) ([]models.DraftOrder, error)
	CountPicks(ctx context.Context, draftID uuid.UUID) (int, error)
	ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error)
	PlayerPoolStatus(ctx context.Context, draftID, playerID uuid.UUID) (PoolStatus, error)
	CountAvailablePlayers(ctx context.Context, draftID uuid.UUID) (int, error)
	ListAvailablePlayers(ctx context.Context, draftID uuid.UUID) ([]models.Player, error)
	AppendPick(ctx context.Context, req AppendPickRequest) error
}

// CaptainVerifier resolves whether a caller represents a team. Supplied by
// the identity/authorization collaborator; the ledger treats the answer as
// an opaque boolean.
type CaptainVerifier interface {
	IsCaptain(ctx context.Context, userID, teamID uuid.UUID) (bool, error)
}

// App is the pick ledger: the authoritative, append-only record of
// accepted picks. It validates submissions against the turn calculator and
// the draftable pool; cross-session mutual exclusion on the next pick slot
// and the player pool is arbitrated by the storage layer's constraints,
// not by in-memory locks.
type App struct {
	repo     LedgerRepository
	verifier CaptainVerifier
	ratings  *rating.Service
	clock    clockwork.Clock
}

// NewApp creates the pick ledger app.
func NewApp(repo LedgerRepository, verifier CaptainVerifier, ratings *rating.Service, clock clockwork.Clock) *App {
	return &App{
		repo:     repo,
		verifier: verifier,
		ratings:  ratings,
		clock:    clock,
	}
}

// SubmitPick validates and commits one pick attempt. Under simultaneous
// submissions exactly one valid attempt wins; every loser gets one of the
// distinguishable rejection reasons. A rejected submitter is never retried
// automatically: the caller re-evaluates the changed turn state.
func (a *App) SubmitPick(ctx context.Context, req SubmitPickRequest) (*models.DraftPick, error) {
	authorized, err := a.verifier.IsCaptain(ctx, req.UserID, req.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify representative: %w", err)
	}
	if !authorized {
		log.Warn().
			Str("draft_id", req.DraftID.String()).
			Str("team_id", req.TeamID.String()).
			Str("user_id", req.UserID.String()).
			Msg("pick attempt by unrecognized representative")
		return nil, ErrNotAuthorized
	}

	draft, err := a.repo.GetDraft(ctx, req.DraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if draft.Status != models.DraftStatusInProgress {
		return nil, ErrDraftNotActive
	}

	order, err := a.repo.GetDraftOrder(ctx, req.DraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft order: %w", err)
	}

	count, err := a.repo.CountPicks(ctx, req.DraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to count picks: %w", err)
	}
	next := count + 1

	// The cap is teams x roster target; completion should have flipped the
	// status already, this guards the window between the two reads.
	if next > len(order)*draft.RosterTarget {
		return nil, ErrDraftNotActive
	}

	if expected := turn.ExpectedTeam(next, order); expected != req.TeamID {
		return nil, ErrNotYourTurn
	}

	status, err := a.repo.PlayerPoolStatus(ctx, req.DraftID, req.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check draftable pool: %w", err)
	}
	if !status.Eligible {
		return nil, ErrPlayerNotEligible
	}
	if status.Picked {
		return nil, ErrPlayerAlreadyPicked
	}

	available, err := a.repo.CountAvailablePlayers(ctx, req.DraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to count available players: %w", err)
	}

	now := a.clock.Now()
	p := models.DraftPick{
		ID:         uuid.New(),
		DraftID:    req.DraftID,
		PickNumber: next,
		Round:      turn.Round(next, len(order)),
		TeamID:     req.TeamID,
		PlayerID:   req.PlayerID,
		PickedAt:   now,
	}

	// Completed when every roster reaches its target or the pool runs dry.
	completes := next == len(order)*draft.RosterTarget || available-1 == 0

	evts, err := a.buildPickEvents(p, completes)
	if err != nil {
		return nil, err
	}

	if err := a.repo.AppendPick(ctx, AppendPickRequest{
		Pick:          p,
		CompleteDraft: completes,
		Events:        evts,
	}); err != nil {
		// Constraint losses come back as taxonomy errors from storage;
		// anything else is an infrastructure failure.
		return nil, err
	}

	log.Info().
		Str("draft_id", p.DraftID.String()).
		Int("pick_number", p.PickNumber).
		Int("round", p.Round).
		Str("team_id", p.TeamID.String()).
		Str("player_id", p.PlayerID.String()).
		Bool("completes_draft", completes).
		Msg("pick accepted")

	return &p, nil
}

// ListPicks returns the ledger for a draft ordered by pick number.
func (a *App) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	picks, err := a.repo.ListPicks(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].PickNumber < picks[j].PickNumber })
	return picks, nil
}

// Snapshot returns the reconciliation view for a draft: current status,
// order, pick count and the team on the clock, all derivable from the
// ledger plus the persisted order alone.
func (a *App) Snapshot(ctx context.Context, draftID uuid.UUID) (*Snapshot, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	order, err := a.repo.GetDraftOrder(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft order: %w", err)
	}
	count, err := a.repo.CountPicks(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to count picks: %w", err)
	}

	snap := &Snapshot{
		Draft:          draft,
		Order:          order,
		PickCount:      count,
		NextPickNumber: count + 1,
	}
	if draft.Status == models.DraftStatusInProgress {
		if onClock := turn.ExpectedTeam(count+1, order); onClock != uuid.Nil {
			snap.OnClockTeamID = &onClock
		}
	}
	return snap, nil
}

// DraftablePool returns the players still eligible for the draft joined
// with their computed grades, best grade first.
func (a *App) DraftablePool(ctx context.Context, draftID uuid.UUID) ([]PoolPlayer, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	players, err := a.repo.ListAvailablePlayers(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available players: %w", err)
	}
	grades, err := a.ratings.SeasonGrades(ctx, draft.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to load season grades: %w", err)
	}

	pool := make([]PoolPlayer, len(players))
	for i, p := range players {
		grade, ok := grades[p.ID]
		if !ok {
			grade = models.GradeDMinus
		}
		pool[i] = PoolPlayer{Player: p, Grade: grade}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Grade.Rank() > pool[j].Grade.Rank()
	})
	return pool, nil
}

func (a *App) buildPickEvents(p models.DraftPick, completes bool) ([]outbox.Event, error) {
	payload, err := json.Marshal(events.PickAcceptedPayload{
		PickID:     p.ID.String(),
		DraftID:    p.DraftID.String(),
		PickNumber: p.PickNumber,
		Round:      p.Round,
		TeamID:     p.TeamID.String(),
		PlayerID:   p.PlayerID.String(),
		PickedAt:   p.PickedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pick_accepted payload: %w", err)
	}
	evts := []outbox.Event{outbox.NewEvent(p.DraftID, events.TypePickAccepted, payload)}

	if completes {
		statusPayload, err := json.Marshal(events.DraftStatusChangedPayload{
			DraftID:   p.DraftID.String(),
			Status:    string(models.DraftStatusCompleted),
			ChangedAt: p.PickedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal draft_status_changed payload: %w", err)
		}
		evts = append(evts, outbox.NewEvent(p.DraftID, events.TypeDraftStatusChanged, statusPayload))
	}
	return evts, nil
}
