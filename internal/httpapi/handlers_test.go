package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/slecomte/rinkside/internal/authz"
	draftapp "github.com/slecomte/rinkside/internal/draft/draft"
	"github.com/slecomte/rinkside/internal/draft/gateway"
	"github.com/slecomte/rinkside/internal/draft/order"
	"github.com/slecomte/rinkside/internal/draft/pick"
	"github.com/slecomte/rinkside/internal/httpapi"
	"github.com/slecomte/rinkside/internal/models"
	"github.com/slecomte/rinkside/internal/notify"
	"github.com/slecomte/rinkside/internal/rating"
	"github.com/slecomte/rinkside/internal/roster"
	"github.com/slecomte/rinkside/internal/store"
)

type apiFixture struct {
	server   *httptest.Server
	store    *store.Memory
	seasonID uuid.UUID
	teams    []models.Team
	captains map[uuid.UUID]uuid.UUID
	players  []models.Player
}

func newAPIFixture(t *testing.T, teamCount, playerCount int) *apiFixture {
	t.Helper()
	mem := store.NewMemory()
	f := &apiFixture{
		store:    mem,
		seasonID: uuid.New(),
		captains: make(map[uuid.UUID]uuid.UUID),
	}

	for i := 0; i < teamCount; i++ {
		captain := uuid.New()
		team := models.Team{ID: uuid.New(), Name: fmt.Sprintf("Team %d", i+1), CaptainID: &captain}
		mem.AddTeam(team)
		f.teams = append(f.teams, team)
		f.captains[team.ID] = captain
	}
	for i := 0; i < playerCount; i++ {
		p := models.Player{ID: uuid.New(), FullName: fmt.Sprintf("Player %02d", i+1), Position: models.PositionLeftWing}
		mem.AddPlayer(p)
		mem.AddSeasonStats(models.SeasonStats{
			PlayerID: p.ID, SeasonID: f.seasonID,
			GamesPlayed: 20, TeamGames: 20, Goals: i, Assists: i,
		})
		f.players = append(f.players, p)
	}

	clock := clockwork.NewRealClock()
	ratings := rating.NewService(mem, clock, time.Hour)
	drafts := draftapp.NewApp(mem, notify.NewLogNotifier(), clock)
	orders := order.NewApp(mem)
	picks := pick.NewApp(mem, authz.NewCaptainVerifier(mem), ratings, clock)
	assembler := roster.NewAssembler(mem, ratings)

	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	go cm.Start(ctx)
	t.Cleanup(cancel)

	h := httpapi.NewHandlers(drafts, orders, picks, assembler)
	ws := gateway.NewWebSocketHandler(cm, picks)
	f.server = httptest.NewServer(httpapi.SetupRoutes(h, ws))
	t.Cleanup(f.server.Close)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

// startedDraft drives a draft through creation, order assignment and
// start over the HTTP surface, returning the draft id.
func (f *apiFixture) startedDraft(t *testing.T, rosterTarget int) uuid.UUID {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/drafts", map[string]any{
		"season_id":     f.seasonID,
		"roster_target": rosterTarget,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create draft returned %d", resp.StatusCode)
	}
	draft := decode[models.Draft](t, resp)

	resp = f.do(t, http.MethodPost, "/api/drafts/"+draft.ID.String()+"/order", nil, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("assign order returned %d", resp.StatusCode)
	}

	resp = f.do(t, http.MethodPost, "/api/drafts/"+draft.ID.String()+"/start", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start draft returned %d", resp.StatusCode)
	}
	return draft.ID
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t, 2, 4)
	resp := f.do(t, http.MethodGet, "/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz returned %d", resp.StatusCode)
	}
}

func TestDraftLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t, 2, 8)
	draftID := f.startedDraft(t, 2)

	resp := f.do(t, http.MethodGet, "/api/drafts/"+draftID.String(), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get state returned %d", resp.StatusCode)
	}
	snap := decode[pick.Snapshot](t, resp)
	if snap.Draft.Status != models.DraftStatusInProgress {
		t.Fatalf("draft status %s, want %s", snap.Draft.Status, models.DraftStatusInProgress)
	}
	if snap.OnClockTeamID == nil {
		t.Fatal("no team on the clock in a started draft")
	}
}

func TestAssignOrderTwiceConflicts(t *testing.T) {
	f := newAPIFixture(t, 2, 8)
	resp := f.do(t, http.MethodPost, "/api/drafts", map[string]any{
		"season_id": f.seasonID, "roster_target": 2,
	}, nil)
	draft := decode[models.Draft](t, resp)

	if resp := f.do(t, http.MethodPost, "/api/drafts/"+draft.ID.String()+"/order", nil, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first assign returned %d", resp.StatusCode)
	}
	resp = f.do(t, http.MethodPost, "/api/drafts/"+draft.ID.String()+"/order", nil, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second assign returned %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	body := decode[map[string]string](t, resp)
	if body["reason"] != "order_already_assigned" {
		t.Fatalf("reason %q, want order_already_assigned", body["reason"])
	}
}

func TestSubmitPickOverHTTP(t *testing.T) {
	f := newAPIFixture(t, 2, 8)
	draftID := f.startedDraft(t, 2)

	resp := f.do(t, http.MethodGet, "/api/drafts/"+draftID.String(), nil, nil)
	snap := decode[pick.Snapshot](t, resp)
	onClock := *snap.OnClockTeamID
	captain := f.captains[onClock]

	// Missing identity is rejected before anything else.
	resp = f.do(t, http.MethodPost, "/api/drafts/"+draftID.String()+"/picks", map[string]any{
		"team_id": onClock, "player_id": f.players[0].ID,
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("headerless pick returned %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	resp = f.do(t, http.MethodPost, "/api/drafts/"+draftID.String()+"/picks", map[string]any{
		"team_id": onClock, "player_id": f.players[0].ID,
	}, map[string]string{"X-User-ID": captain.String()})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("pick returned %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	accepted := decode[models.DraftPick](t, resp)
	if accepted.PickNumber != 1 {
		t.Fatalf("pick number %d, want 1", accepted.PickNumber)
	}

	// The same team again is out of turn with two teams drafting.
	resp = f.do(t, http.MethodPost, "/api/drafts/"+draftID.String()+"/picks", map[string]any{
		"team_id": onClock, "player_id": f.players[1].ID,
	}, map[string]string{"X-User-ID": captain.String()})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("out-of-turn pick returned %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	body := decode[map[string]string](t, resp)
	if body["reason"] != "not_your_turn" {
		t.Fatalf("reason %q, want not_your_turn", body["reason"])
	}

	resp = f.do(t, http.MethodGet, "/api/drafts/"+draftID.String()+"/picks", nil, nil)
	ledger := decode[[]models.DraftPick](t, resp)
	if len(ledger) != 1 {
		t.Fatalf("ledger has %d picks, want 1", len(ledger))
	}
}

func TestPoolAndRosterOverHTTP(t *testing.T) {
	f := newAPIFixture(t, 2, 6)
	draftID := f.startedDraft(t, 2)

	resp := f.do(t, http.MethodGet, "/api/drafts/"+draftID.String()+"/pool", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pool returned %d", resp.StatusCode)
	}
	pool := decode[[]pick.PoolPlayer](t, resp)
	if len(pool) != 6 {
		t.Fatalf("pool size %d, want 6", len(pool))
	}

	snapResp := f.do(t, http.MethodGet, "/api/drafts/"+draftID.String(), nil, nil)
	snap := decode[pick.Snapshot](t, snapResp)
	onClock := *snap.OnClockTeamID
	resp = f.do(t, http.MethodPost, "/api/drafts/"+draftID.String()+"/picks", map[string]any{
		"team_id": onClock, "player_id": pool[0].Player.ID,
	}, map[string]string{"X-User-ID": f.captains[onClock].String()})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("pick returned %d", resp.StatusCode)
	}

	resp = f.do(t, http.MethodGet, "/api/drafts/"+draftID.String()+"/teams/"+onClock.String()+"/roster", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("roster returned %d", resp.StatusCode)
	}
	teamRoster := decode[roster.TeamRoster](t, resp)
	if len(teamRoster.Players) != 1 {
		t.Fatalf("roster has %d players, want 1", len(teamRoster.Players))
	}
	if teamRoster.Players[0].Player.ID != pool[0].Player.ID {
		t.Fatal("roster does not contain the picked player")
	}
}

func TestWebsocketPushesSnapshotFirst(t *testing.T) {
	f := newAPIFixture(t, 2, 6)
	draftID := f.startedDraft(t, 2)

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/drafts/" + draftID.String()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame gateway.DraftEvent
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("failed to read first frame: %v", err)
	}
	if frame.Type != "snapshot" {
		t.Fatalf("first frame type %q, want snapshot", frame.Type)
	}
	if frame.DraftID != draftID.String() {
		t.Fatalf("snapshot for draft %s, want %s", frame.DraftID, draftID)
	}

	var snap pick.Snapshot
	if err := json.Unmarshal(frame.Data, &snap); err != nil {
		t.Fatalf("failed to unmarshal snapshot payload: %v", err)
	}
	if snap.NextPickNumber != 1 {
		t.Fatalf("snapshot next pick %d, want 1", snap.NextPickNumber)
	}
}

func TestWebsocketUnknownDraftRejected(t *testing.T) {
	f := newAPIFixture(t, 2, 6)

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/drafts/" + uuid.New().String()
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail for unknown draft")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}
