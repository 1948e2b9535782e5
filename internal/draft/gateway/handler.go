package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/slecomte/rinkside/internal/draft/pick"
)

// StateProvider supplies the reconciliation snapshot pushed to an
// observer right after it connects, so a reconnecting client never needs
// missed events replayed.
type StateProvider interface {
	Snapshot(ctx context.Context, draftID uuid.UUID) (*pick.Snapshot, error)
}

// WebSocketHandler upgrades observer connections for a draft.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	state             StateProvider
}

// NewWebSocketHandler creates a websocket handler.
func NewWebSocketHandler(cm *ConnectionManager, state StateProvider) *WebSocketHandler {
	return &WebSocketHandler{connectionManager: cm, state: state}
}

// HandleDraftConnection upgrades the request and pushes the current
// draft snapshot as the first frame.
func (h *WebSocketHandler) HandleDraftConnection(w http.ResponseWriter, r *http.Request) {
	draftID, err := uuid.Parse(chi.URLParam(r, "draftID"))
	if err != nil {
		http.Error(w, "invalid draft id", http.StatusBadRequest)
		return
	}

	// Identity comes from the session in production; spectators connect
	// anonymously.
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "anonymous"
	}

	snap, err := h.state.Snapshot(r.Context(), draftID)
	if err != nil {
		http.Error(w, "draft not found", http.StatusNotFound)
		return
	}

	conn, err := h.connectionManager.UpgradeConnection(w, r, userID, draftID)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	frame, err := snapshotFrame(draftID, snap)
	if err != nil {
		log.Error().Err(err).Str("draft_id", draftID.String()).Msg("failed to build snapshot frame")
		return
	}
	if !conn.SendDirect(frame) {
		log.Warn().Str("connection_id", conn.ID).Msg("snapshot frame dropped, send buffer full")
	}
}

// snapshotFrame wraps the snapshot in the same envelope as stream events
// so clients handle it uniformly.
func snapshotFrame(draftID uuid.UUID, snap *pick.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return json.Marshal(DraftEvent{
		ID:        uuid.New().String(),
		DraftID:   draftID.String(),
		Type:      "snapshot",
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}
