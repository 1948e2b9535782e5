package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/slecomte/rinkside/internal/authz"
	draftapp "github.com/slecomte/rinkside/internal/draft/draft"
	"github.com/slecomte/rinkside/internal/draft/order"
	"github.com/slecomte/rinkside/internal/draft/outbox"
	"github.com/slecomte/rinkside/internal/draft/pick"
	"github.com/slecomte/rinkside/internal/httpapi"
	"github.com/slecomte/rinkside/internal/models"
	"github.com/slecomte/rinkside/internal/notify"
	"github.com/slecomte/rinkside/internal/rating"
	"github.com/slecomte/rinkside/internal/roster"
)

// Store is the full storage surface the server wires against. Both the
// Postgres and in-memory backends satisfy it.
type Store interface {
	draftapp.DraftRepository
	order.OrderRepository
	pick.LedgerRepository
	outbox.Repository
	authz.TeamReader
	rating.StatsSource
	ListTeamPicks(ctx context.Context, draftID, teamID uuid.UUID) ([]models.DraftPick, error)
}

// Services holds the wired application layer.
type Services struct {
	Drafts   *draftapp.App
	Orders   *order.App
	Picks    *pick.App
	Roster   *roster.Assembler
	Ratings  *rating.Service
	Handlers *httpapi.Handlers
}

func setupServices(store Store, cfg *Config) *Services {
	// Storage layer → app layer → HTTP layer
	clock := clockwork.NewRealClock()

	ratings := rating.NewService(store, clock, cfg.Ratings.CacheTTL)
	verifier := authz.NewCaptainVerifier(store)

	drafts := draftapp.NewApp(store, notify.NewLogNotifier(), clock)
	orders := order.NewApp(store)
	picks := pick.NewApp(store, verifier, ratings, clock)
	assembler := roster.NewAssembler(store, ratings)

	return &Services{
		Drafts:   drafts,
		Orders:   orders,
		Picks:    picks,
		Roster:   assembler,
		Ratings:  ratings,
		Handlers: httpapi.NewHandlers(drafts, orders, picks, assembler),
	}
}
