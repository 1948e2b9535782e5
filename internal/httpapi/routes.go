package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/slecomte/rinkside/internal/draft/gateway"
)

// SetupRoutes builds the router with the draft engine's surfaced
// interfaces plus the websocket subscription channel.
func SetupRoutes(h *Handlers, ws *gateway.WebSocketHandler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)

	r.Route("/api/drafts", func(r chi.Router) {
		r.Post("/", h.CreateDraft)
		r.Route("/{draftID}", func(r chi.Router) {
			r.Get("/", h.GetDraftState)
			r.Post("/order", h.AssignOrder)
			r.Post("/start", h.StartDraft)
			r.Get("/picks", h.GetLedger)
			r.Post("/picks", h.SubmitPick)
			r.Get("/pool", h.GetDraftablePool)
			r.Get("/teams/{teamID}/roster", h.GetTeamRoster)
		})
	})

	r.Get("/ws/drafts/{draftID}", ws.HandleDraftConnection)

	return r
}

// Healthz reports process liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
