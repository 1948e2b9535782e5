package draft_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	draftapp "github.com/slecomte/rinkside/internal/draft/draft"
	"github.com/slecomte/rinkside/internal/draft/events"
	"github.com/slecomte/rinkside/internal/models"
	"github.com/slecomte/rinkside/internal/store"
)

type recordingNotifier struct {
	started []uuid.UUID
}

func (r *recordingNotifier) DraftStarted(ctx context.Context, draftID uuid.UUID) error {
	r.started = append(r.started, draftID)
	return nil
}

func newLifecycleApp(mem *store.Memory) (*draftapp.App, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return draftapp.NewApp(mem, notifier, clockwork.NewFakeClock()), notifier
}

func TestCreateDraftValidation(t *testing.T) {
	mem := store.NewMemory()
	app, _ := newLifecycleApp(mem)
	ctx := context.Background()

	if _, err := app.CreateDraft(ctx, draftapp.CreateDraftRequest{RosterTarget: 5}); err == nil {
		t.Fatal("expected error for missing season")
	}
	if _, err := app.CreateDraft(ctx, draftapp.CreateDraftRequest{SeasonID: uuid.New()}); err == nil {
		t.Fatal("expected error for zero roster target")
	}

	d, err := app.CreateDraft(ctx, draftapp.CreateDraftRequest{SeasonID: uuid.New(), RosterTarget: 5})
	if err != nil {
		t.Fatalf("CreateDraft() failed: %v", err)
	}
	if d.ID == uuid.Nil {
		t.Fatal("expected a generated draft id")
	}
	if d.Status != models.DraftStatusPending {
		t.Fatalf("new draft status %s, want %s", d.Status, models.DraftStatusPending)
	}
}

func TestStartDraftRequiresAssignedOrder(t *testing.T) {
	mem := store.NewMemory()
	app, _ := newLifecycleApp(mem)
	ctx := context.Background()

	d, err := app.CreateDraft(ctx, draftapp.CreateDraftRequest{SeasonID: uuid.New(), RosterTarget: 5})
	if err != nil {
		t.Fatalf("CreateDraft() failed: %v", err)
	}

	if _, err := app.StartDraft(ctx, d.ID); !errors.Is(err, draftapp.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition starting a pending draft, got %v", err)
	}
}

func TestStartDraftTransitionsAndNotifies(t *testing.T) {
	mem := store.NewMemory()
	app, notifier := newLifecycleApp(mem)
	ctx := context.Background()

	d, err := app.CreateDraft(ctx, draftapp.CreateDraftRequest{SeasonID: uuid.New(), RosterTarget: 5})
	if err != nil {
		t.Fatalf("CreateDraft() failed: %v", err)
	}
	teamID := uuid.New()
	if err := mem.AssignDraftOrder(ctx, d.ID, []models.DraftOrder{
		{DraftID: d.ID, TeamID: teamID, PickPosition: 1},
	}); err != nil {
		t.Fatalf("AssignDraftOrder() failed: %v", err)
	}

	started, err := app.StartDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("StartDraft() failed: %v", err)
	}
	if started.Status != models.DraftStatusInProgress {
		t.Fatalf("status %s, want %s", started.Status, models.DraftStatusInProgress)
	}
	if started.StartedAt == nil {
		t.Fatal("started_at not recorded")
	}
	if len(notifier.started) != 1 || notifier.started[0] != d.ID {
		t.Fatalf("notifier called with %v, want one call for %s", notifier.started, d.ID)
	}

	// Starting twice is a lifecycle violation, not an idempotent no-op.
	if _, err := app.StartDraft(ctx, d.ID); !errors.Is(err, draftapp.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on restart, got %v", err)
	}
}

func TestStartDraftEmitsStatusEvent(t *testing.T) {
	mem := store.NewMemory()
	app, _ := newLifecycleApp(mem)
	ctx := context.Background()

	d, err := app.CreateDraft(ctx, draftapp.CreateDraftRequest{SeasonID: uuid.New(), RosterTarget: 5})
	if err != nil {
		t.Fatalf("CreateDraft() failed: %v", err)
	}
	if err := mem.AssignDraftOrder(ctx, d.ID, []models.DraftOrder{
		{DraftID: d.ID, TeamID: uuid.New(), PickPosition: 1},
	}); err != nil {
		t.Fatalf("AssignDraftOrder() failed: %v", err)
	}
	if _, err := app.StartDraft(ctx, d.ID); err != nil {
		t.Fatalf("StartDraft() failed: %v", err)
	}

	batch, err := mem.FetchUnsentOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("FetchUnsentOutbox() failed: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("outbox has %d events, want 1", len(batch))
	}
	if batch[0].EventType != events.TypeDraftStatusChanged {
		t.Fatalf("event type %s, want %s", batch[0].EventType, events.TypeDraftStatusChanged)
	}

	var payload events.DraftStatusChangedPayload
	if err := json.Unmarshal(batch[0].Payload, &payload); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if payload.Status != string(models.DraftStatusInProgress) {
		t.Fatalf("payload status %s, want %s", payload.Status, models.DraftStatusInProgress)
	}
}
