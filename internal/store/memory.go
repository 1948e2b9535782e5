package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/slecomte/rinkside/internal/draft/draft"
	"github.com/slecomte/rinkside/internal/draft/order"
	"github.com/slecomte/rinkside/internal/draft/outbox"
	"github.com/slecomte/rinkside/internal/draft/pick"
	"github.com/slecomte/rinkside/internal/models"
)

// Memory is an in-memory store implementing the same repository
// interfaces as Postgres, with the same uniqueness semantics enforced
// under a single mutex. Used for tests and local development without a
// database.
type Memory struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]models.Draft
	orders map[uuid.UUID][]models.DraftOrder
	picks  map[uuid.UUID][]models.DraftPick
	teams  map[uuid.UUID]models.Team
	plrs   map[uuid.UUID]models.Player
	stats  map[uuid.UUID][]models.SeasonStats // by season
	outbox []outbox.Event
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		drafts: make(map[uuid.UUID]models.Draft),
		orders: make(map[uuid.UUID][]models.DraftOrder),
		picks:  make(map[uuid.UUID][]models.DraftPick),
		teams:  make(map[uuid.UUID]models.Team),
		plrs:   make(map[uuid.UUID]models.Player),
		stats:  make(map[uuid.UUID][]models.SeasonStats),
	}
}

// Seed helpers

// AddTeam registers a team.
func (m *Memory) AddTeam(t models.Team) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[t.ID] = t
}

// AddPlayer registers a player in the pool universe.
func (m *Memory) AddPlayer(p models.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plrs[p.ID] = p
}

// AddSeasonStats registers one player's stats for a season.
func (m *Memory) AddSeasonStats(st models.SeasonStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[st.SeasonID] = append(m.stats[st.SeasonID], st)
}

// Drafts

func (m *Memory) CreateDraft(ctx context.Context, req draft.CreateDraftRequest) (*models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	d := models.Draft{
		ID:           req.ID,
		SeasonID:     req.SeasonID,
		Status:       models.DraftStatusPending,
		RosterTarget: req.RosterTarget,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.drafts[d.ID] = d
	return &d, nil
}

func (m *Memory) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft not found: %s", id)
	}
	return &d, nil
}

func (m *Memory) UpdateDraftStatus(ctx context.Context, id uuid.UUID, status models.DraftStatus, evts []outbox.Event) (*models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft not found: %s", id)
	}
	now := time.Now()
	d.Status = status
	d.UpdatedAt = now
	switch status {
	case models.DraftStatusInProgress:
		d.StartedAt = &now
	case models.DraftStatusCompleted:
		d.CompletedAt = &now
	}
	m.drafts[id] = d
	m.appendOutboxLocked(evts, now)
	return &d, nil
}

// Draft order

func (m *Memory) AssignDraftOrder(ctx context.Context, draftID uuid.UUID, rows []models.DraftOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[draftID]
	if !ok {
		return fmt.Errorf("draft not found: %s", draftID)
	}
	if d.OrderAssigned || len(m.orders[draftID]) > 0 {
		return order.ErrAlreadyAssigned
	}
	m.orders[draftID] = append([]models.DraftOrder(nil), rows...)
	d.OrderAssigned = true
	d.Status = models.DraftStatusOrderAssigned
	d.UpdatedAt = time.Now()
	m.drafts[draftID] = d
	return nil
}

func (m *Memory) GetDraftOrder(ctx context.Context, draftID uuid.UUID) ([]models.DraftOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.DraftOrder(nil), m.orders[draftID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].PickPosition < out[j].PickPosition })
	return out, nil
}

// Picks

func (m *Memory) CountPicks(ctx context.Context, draftID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.picks[draftID]), nil
}

func (m *Memory) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.DraftPick(nil), m.picks[draftID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].PickNumber < out[j].PickNumber })
	return out, nil
}

func (m *Memory) ListTeamPicks(ctx context.Context, draftID, teamID uuid.UUID) ([]models.DraftPick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DraftPick
	for _, p := range m.picks[draftID] {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PickNumber < out[j].PickNumber })
	return out, nil
}

func (m *Memory) PlayerPoolStatus(ctx context.Context, draftID, playerID uuid.UUID) (pick.PoolStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := pick.PoolStatus{}
	if _, ok := m.plrs[playerID]; ok {
		st.Eligible = true
	}
	for _, p := range m.picks[draftID] {
		if p.PlayerID == playerID {
			st.Picked = true
			break
		}
	}
	return st, nil
}

func (m *Memory) CountAvailablePlayers(ctx context.Context, draftID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.availableLocked(draftID)), nil
}

func (m *Memory) ListAvailablePlayers(ctx context.Context, draftID uuid.UUID) ([]models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.availableLocked(draftID)
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

// AppendPick mirrors the Postgres commit: status check, player
// uniqueness, slot uniqueness, then the append plus events and the
// optional completion, all under one lock so exactly one racer wins.
func (m *Memory) AppendPick(ctx context.Context, req pick.AppendPickRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := req.Pick
	d, ok := m.drafts[p.DraftID]
	if !ok {
		return fmt.Errorf("draft not found: %s", p.DraftID)
	}
	if d.Status != models.DraftStatusInProgress {
		return pick.ErrDraftNotActive
	}
	for _, existing := range m.picks[p.DraftID] {
		if existing.PlayerID == p.PlayerID {
			return pick.ErrPlayerAlreadyPicked
		}
	}
	for _, existing := range m.picks[p.DraftID] {
		if existing.PickNumber == p.PickNumber {
			return pick.ErrNotYourTurn
		}
	}

	m.picks[p.DraftID] = append(m.picks[p.DraftID], p)
	now := time.Now()
	if req.CompleteDraft {
		d.Status = models.DraftStatusCompleted
		d.CompletedAt = &now
		d.UpdatedAt = now
		m.drafts[p.DraftID] = d
	}
	m.appendOutboxLocked(req.Events, now)
	return nil
}

// Teams and players

func (m *Memory) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[id]
	if !ok {
		return nil, fmt.Errorf("team not found: %s", id)
	}
	return &t, nil
}

func (m *Memory) ListTeams(ctx context.Context) ([]models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Team, 0, len(m.teams))
	for _, t := range m.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) ListPlayers(ctx context.Context) ([]models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Player, 0, len(m.plrs))
	for _, p := range m.plrs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (m *Memory) ListSeasonStats(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SeasonStats(nil), m.stats[seasonID]...), nil
}

// Outbox

func (m *Memory) FetchUnsentOutbox(ctx context.Context, limit int) ([]outbox.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []outbox.Event
	for _, e := range m.outbox {
		if e.SentAt == nil {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) MarkOutboxSent(ctx context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	sent := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		sent[id] = true
	}
	for i := range m.outbox {
		if sent[m.outbox[i].ID] {
			m.outbox[i].SentAt = &now
		}
	}
	return nil
}

func (m *Memory) availableLocked(draftID uuid.UUID) []models.Player {
	picked := make(map[uuid.UUID]bool, len(m.picks[draftID]))
	for _, p := range m.picks[draftID] {
		picked[p.PlayerID] = true
	}
	var out []models.Player
	for _, p := range m.plrs {
		if !picked[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

func (m *Memory) appendOutboxLocked(evts []outbox.Event, now time.Time) {
	for _, e := range evts {
		e.CreatedAt = now
		m.outbox = append(m.outbox, e)
	}
}
