package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	draftapp "github.com/slecomte/rinkside/internal/draft/draft"
	"github.com/slecomte/rinkside/internal/draft/order"
	"github.com/slecomte/rinkside/internal/draft/pick"
	"github.com/slecomte/rinkside/internal/roster"
)

// Handlers serves the draft engine's HTTP surface.
type Handlers struct {
	drafts *draftapp.App
	orders *order.App
	picks  *pick.App
	roster *roster.Assembler
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(drafts *draftapp.App, orders *order.App, picks *pick.App, assembler *roster.Assembler) *Handlers {
	return &Handlers{drafts: drafts, orders: orders, picks: picks, roster: assembler}
}

// CreateDraft creates a new pending draft.
func (h *Handlers) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftapp.CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	draft, err := h.drafts.CreateDraft(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

// GetDraftState returns the reconciliation snapshot for a draft.
func (h *Handlers) GetDraftState(w http.ResponseWriter, r *http.Request) {
	draftID, ok := parseID(w, r, "draftID")
	if !ok {
		return
	}
	snap, err := h.picks.Snapshot(r.Context(), draftID)
	if err != nil {
		writeNotFound(w, "draft not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// AssignOrder draws and persists the draft's one-time random order.
func (h *Handlers) AssignOrder(w http.ResponseWriter, r *http.Request) {
	draftID, ok := parseID(w, r, "draftID")
	if !ok {
		return
	}
	assigned, err := h.orders.AssignOrder(r.Context(), draftID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, assigned)
}

// StartDraft moves an order_assigned draft to in_progress.
func (h *Handlers) StartDraft(w http.ResponseWriter, r *http.Request) {
	draftID, ok := parseID(w, r, "draftID")
	if !ok {
		return
	}
	draft, err := h.drafts.StartDraft(r.Context(), draftID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// GetLedger returns the ordered list of accepted picks.
func (h *Handlers) GetLedger(w http.ResponseWriter, r *http.Request) {
	draftID, ok := parseID(w, r, "draftID")
	if !ok {
		return
	}
	picks, err := h.picks.ListPicks(r.Context(), draftID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, picks)
}

type submitPickBody struct {
	TeamID   uuid.UUID `json:"team_id"`
	PlayerID uuid.UUID `json:"player_id"`
}

// SubmitPick submits one pick attempt. The caller's identity arrives in
// the X-User-ID header, placed there by the session middleware of the
// surrounding application.
func (h *Handlers) SubmitPick(w http.ResponseWriter, r *http.Request) {
	draftID, ok := parseID(w, r, "draftID")
	if !ok {
		return
	}

	userID, err := uuid.Parse(r.Header.Get("X-User-ID"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not_authorized", "missing or invalid caller identity")
		return
	}

	var body submitPickBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	p, err := h.picks.SubmitPick(r.Context(), pick.SubmitPickRequest{
		DraftID:  draftID,
		TeamID:   body.TeamID,
		PlayerID: body.PlayerID,
		UserID:   userID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetDraftablePool returns the remaining eligible players with grades.
func (h *Handlers) GetDraftablePool(w http.ResponseWriter, r *http.Request) {
	draftID, ok := parseID(w, r, "draftID")
	if !ok {
		return
	}
	pool, err := h.picks.DraftablePool(r.Context(), draftID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

// GetTeamRoster returns a team's drafted roster with composition counts.
func (h *Handlers) GetTeamRoster(w http.ResponseWriter, r *http.Request) {
	draftID, ok := parseID(w, r, "draftID")
	if !ok {
		return
	}
	teamID, ok := parseID(w, r, "teamID")
	if !ok {
		return
	}
	teamRoster, err := h.roster.AssembleRoster(r.Context(), draftID, teamID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teamRoster)
}

// errorBody is the machine-readable rejection shape: reason tells the
// client whether to refresh state or show a terminal message.
type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// writeDomainError maps the draft taxonomy onto HTTP. Everything in the
// taxonomy is an expected, user-recoverable condition; anything else is
// surfaced as a retryable infrastructure failure.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pick.ErrDraftNotActive):
		writeError(w, http.StatusConflict, "draft_not_active", err.Error())
	case errors.Is(err, pick.ErrNotYourTurn):
		writeError(w, http.StatusConflict, "not_your_turn", err.Error())
	case errors.Is(err, pick.ErrPlayerAlreadyPicked):
		writeError(w, http.StatusConflict, "player_already_picked", err.Error())
	case errors.Is(err, pick.ErrPlayerNotEligible):
		writeError(w, http.StatusUnprocessableEntity, "player_not_eligible", err.Error())
	case errors.Is(err, pick.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, draftapp.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, order.ErrAlreadyAssigned):
		writeError(w, http.StatusConflict, "order_already_assigned", err.Error())
	case errors.Is(err, order.ErrNoEligibleTeams):
		writeError(w, http.StatusUnprocessableEntity, "no_eligible_teams", err.Error())
	default:
		log.Error().Err(err).Msg("internal error serving request")
		writeError(w, http.StatusInternalServerError, "internal", "temporary failure, please retry")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, reason, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Reason: reason})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, "bad_request", msg)
}

func writeNotFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, "not_found", msg)
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeBadRequest(w, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}
