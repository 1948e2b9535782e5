package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/slecomte/rinkside/internal/draft/events"
	"github.com/slecomte/rinkside/internal/draft/outbox"
	"github.com/slecomte/rinkside/internal/models"
	"github.com/slecomte/rinkside/internal/notify"
)

// ErrInvalidTransition is returned when a lifecycle change skips a step
// or moves backwards. The lifecycle is strictly one-way.
var ErrInvalidTransition = errors.New("invalid draft status transition")

// DraftRepository defines what the lifecycle app needs from storage.
// UpdateDraftStatus commits the status change together with its outbox
// events in one transaction.
type DraftRepository interface {
	CreateDraft(ctx context.Context, req CreateDraftRequest) (*models.Draft, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	UpdateDraftStatus(ctx context.Context, id uuid.UUID, status models.DraftStatus, evts []outbox.Event) (*models.Draft, error)
}

// App handles draft lifecycle: creation and the
// pending -> order_assigned -> in_progress -> completed progression.
type App struct {
	repo     DraftRepository
	notifier notify.Notifier
	clock    clockwork.Clock
}

// NewApp creates a draft lifecycle app.
func NewApp(repo DraftRepository, notifier notify.Notifier, clock clockwork.Clock) *App {
	return &App{repo: repo, notifier: notifier, clock: clock}
}

// CreateDraft creates a new pending draft.
func (a *App) CreateDraft(ctx context.Context, req CreateDraftRequest) (*models.Draft, error) {
	if req.SeasonID == uuid.Nil {
		return nil, fmt.Errorf("season_id is required")
	}
	if req.RosterTarget <= 0 {
		return nil, fmt.Errorf("roster_target must be greater than 0")
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	draft, err := a.repo.CreateDraft(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	log.Info().
		Str("draft_id", draft.ID.String()).
		Str("season_id", draft.SeasonID.String()).
		Int("roster_target", draft.RosterTarget).
		Msg("draft created")
	return draft, nil
}

// GetDraft retrieves a draft by ID.
func (a *App) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	draft, err := a.repo.GetDraft(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return draft, nil
}

// StartDraft moves an order_assigned draft to in_progress, emits the
// status change through the outbox, and informs the notification
// collaborator so representatives get alerted out of band.
func (a *App) StartDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	current, err := a.repo.GetDraft(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("draft not found: %w", err)
	}
	if err := validateTransition(current.Status, models.DraftStatusInProgress); err != nil {
		return nil, err
	}

	evt, err := statusEvent(id, models.DraftStatusInProgress, a.clock)
	if err != nil {
		return nil, err
	}

	draft, err := a.repo.UpdateDraftStatus(ctx, id, models.DraftStatusInProgress, []outbox.Event{evt})
	if err != nil {
		return nil, fmt.Errorf("failed to start draft: %w", err)
	}

	if err := a.notifier.DraftStarted(ctx, draft.ID); err != nil {
		// Notification delivery is out of band; never fail the start.
		log.Error().Err(err).Str("draft_id", draft.ID.String()).Msg("failed to notify draft start")
	}

	log.Info().Str("draft_id", draft.ID.String()).Msg("draft started")
	return draft, nil
}

func statusEvent(draftID uuid.UUID, status models.DraftStatus, clock clockwork.Clock) (outbox.Event, error) {
	payload, err := json.Marshal(events.DraftStatusChangedPayload{
		DraftID:   draftID.String(),
		Status:    string(status),
		ChangedAt: clock.Now(),
	})
	if err != nil {
		return outbox.Event{}, fmt.Errorf("failed to marshal draft_status_changed payload: %w", err)
	}
	return outbox.NewEvent(draftID, events.TypeDraftStatusChanged, payload), nil
}

// validateTransition enforces the one-way lifecycle.
func validateTransition(from, to models.DraftStatus) error {
	allowed := map[models.DraftStatus]models.DraftStatus{
		models.DraftStatusPending:       models.DraftStatusOrderAssigned,
		models.DraftStatusOrderAssigned: models.DraftStatusInProgress,
		models.DraftStatusInProgress:    models.DraftStatusCompleted,
	}
	if next, ok := allowed[from]; ok && next == to {
		return nil
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
}
