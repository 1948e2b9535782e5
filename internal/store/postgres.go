// Package store provides the durable storage behind the draft engine.
// Postgres is the authoritative ledger owner: row-level uniqueness
// constraints arbitrate concurrent pick submissions, so no in-memory
// locking is needed across sessions.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/slecomte/rinkside/internal/draft/draft"
	"github.com/slecomte/rinkside/internal/draft/order"
	"github.com/slecomte/rinkside/internal/draft/outbox"
	"github.com/slecomte/rinkside/internal/draft/pick"
	"github.com/slecomte/rinkside/internal/models"
)

const pgUniqueViolation = "23505"

const schema = `
	CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		captain_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS players (
		id UUID PRIMARY KEY,
		full_name TEXT NOT NULL,
		position TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS player_season_stats (
		player_id UUID NOT NULL REFERENCES players(id),
		season_id UUID NOT NULL,
		games_played INT NOT NULL DEFAULT 0,
		team_games INT NOT NULL DEFAULT 0,
		goals INT NOT NULL DEFAULT 0,
		assists INT NOT NULL DEFAULT 0,
		goals_against_avg DOUBLE PRECISION NOT NULL DEFAULT 0,
		save_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (player_id, season_id)
	);

	CREATE TABLE IF NOT EXISTS drafts (
		id UUID PRIMARY KEY,
		season_id UUID NOT NULL,
		status TEXT NOT NULL,
		order_assigned BOOLEAN NOT NULL DEFAULT FALSE,
		roster_target INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ
	);

	CREATE TABLE IF NOT EXISTS draft_order (
		draft_id UUID NOT NULL REFERENCES drafts(id),
		team_id UUID NOT NULL REFERENCES teams(id),
		pick_position INT NOT NULL,
		CONSTRAINT uq_draft_order_team UNIQUE (draft_id, team_id),
		CONSTRAINT uq_draft_order_position UNIQUE (draft_id, pick_position)
	);

	CREATE TABLE IF NOT EXISTS draft_picks (
		id UUID PRIMARY KEY,
		draft_id UUID NOT NULL REFERENCES drafts(id),
		pick_number INT NOT NULL,
		round INT NOT NULL,
		team_id UUID NOT NULL REFERENCES teams(id),
		player_id UUID NOT NULL REFERENCES players(id),
		picked_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT uq_draft_picks_number UNIQUE (draft_id, pick_number),
		CONSTRAINT uq_draft_picks_player UNIQUE (draft_id, player_id)
	);

	CREATE TABLE IF NOT EXISTS draft_outbox (
		seq BIGSERIAL,
		id UUID PRIMARY KEY,
		draft_id UUID NOT NULL REFERENCES drafts(id),
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		sent_at TIMESTAMPTZ
	);
`

// Postgres implements every repository interface the draft engine's app
// layers declare, backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database and bootstraps the schema.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}
	log.Info().Msg("connected to postgres")
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

// Drafts

func (s *Postgres) CreateDraft(ctx context.Context, req draft.CreateDraftRequest) (*models.Draft, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO drafts (id, season_id, status, roster_target)
		VALUES ($1, $2, $3, $4)
		RETURNING id, season_id, status, order_assigned, roster_target,
		          created_at, updated_at, started_at, completed_at`,
		req.ID, req.SeasonID, models.DraftStatusPending, req.RosterTarget)
	return scanDraft(row)
}

func (s *Postgres) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, season_id, status, order_assigned, roster_target,
		       created_at, updated_at, started_at, completed_at
		FROM drafts WHERE id = $1`, id)
	return scanDraft(row)
}

func (s *Postgres) UpdateDraftStatus(ctx context.Context, id uuid.UUID, status models.DraftStatus, evts []outbox.Event) (*models.Draft, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE drafts SET
			status = $2,
			updated_at = now(),
			started_at = CASE WHEN $2 = 'in_progress' THEN now() ELSE started_at END,
			completed_at = CASE WHEN $2 = 'completed' THEN now() ELSE completed_at END
		WHERE id = $1
		RETURNING id, season_id, status, order_assigned, roster_target,
		          created_at, updated_at, started_at, completed_at`, id, status)
	d, err := scanDraft(row)
	if err != nil {
		return nil, err
	}

	if err := insertOutbox(ctx, tx, evts); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return d, nil
}

// Draft order

func (s *Postgres) AssignDraftOrder(ctx context.Context, draftID uuid.UUID, rows []models.DraftOrder) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var assigned bool
	if err := tx.QueryRow(ctx,
		`SELECT order_assigned FROM drafts WHERE id = $1 FOR UPDATE`, draftID,
	).Scan(&assigned); err != nil {
		return fmt.Errorf("failed to lock draft: %w", err)
	}
	if assigned {
		return order.ErrAlreadyAssigned
	}

	for _, r := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO draft_order (draft_id, team_id, pick_position) VALUES ($1, $2, $3)`,
			r.DraftID, r.TeamID, r.PickPosition); err != nil {
			if isUniqueViolation(err) {
				return order.ErrAlreadyAssigned
			}
			return fmt.Errorf("failed to insert draft order row: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE drafts SET order_assigned = TRUE, status = $2, updated_at = now()
		WHERE id = $1`, draftID, models.DraftStatusOrderAssigned); err != nil {
		return fmt.Errorf("failed to mark draft order assigned: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit draft order: %w", err)
	}
	return nil
}

func (s *Postgres) GetDraftOrder(ctx context.Context, draftID uuid.UUID) ([]models.DraftOrder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT draft_id, team_id, pick_position
		FROM draft_order WHERE draft_id = $1 ORDER BY pick_position`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query draft order: %w", err)
	}
	defer rows.Close()

	var out []models.DraftOrder
	for rows.Next() {
		var o models.DraftOrder
		if err := rows.Scan(&o.DraftID, &o.TeamID, &o.PickPosition); err != nil {
			return nil, fmt.Errorf("failed to scan draft order row: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Picks

func (s *Postgres) CountPicks(ctx context.Context, draftID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM draft_picks WHERE draft_id = $1`, draftID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count picks: %w", err)
	}
	return n, nil
}

func (s *Postgres) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	return s.queryPicks(ctx, `
		SELECT id, draft_id, pick_number, round, team_id, player_id, picked_at
		FROM draft_picks WHERE draft_id = $1 ORDER BY pick_number`, draftID)
}

func (s *Postgres) ListTeamPicks(ctx context.Context, draftID, teamID uuid.UUID) ([]models.DraftPick, error) {
	return s.queryPicks(ctx, `
		SELECT id, draft_id, pick_number, round, team_id, player_id, picked_at
		FROM draft_picks WHERE draft_id = $1 AND team_id = $2 ORDER BY pick_number`, draftID, teamID)
}

func (s *Postgres) PlayerPoolStatus(ctx context.Context, draftID, playerID uuid.UUID) (pick.PoolStatus, error) {
	var st pick.PoolStatus
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM players WHERE id = $2),
		       EXISTS (SELECT 1 FROM draft_picks WHERE draft_id = $1 AND player_id = $2)`,
		draftID, playerID).Scan(&st.Eligible, &st.Picked)
	if err != nil {
		return pick.PoolStatus{}, fmt.Errorf("failed to check pool status: %w", err)
	}
	return st, nil
}

func (s *Postgres) CountAvailablePlayers(ctx context.Context, draftID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM players p
		WHERE NOT EXISTS (
			SELECT 1 FROM draft_picks dp WHERE dp.draft_id = $1 AND dp.player_id = p.id
		)`, draftID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count available players: %w", err)
	}
	return n, nil
}

func (s *Postgres) ListAvailablePlayers(ctx context.Context, draftID uuid.UUID) ([]models.Player, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.full_name, p.position, p.created_at
		FROM players p
		WHERE NOT EXISTS (
			SELECT 1 FROM draft_picks dp WHERE dp.draft_id = $1 AND dp.player_id = p.id
		)
		ORDER BY p.full_name`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query available players: %w", err)
	}
	defer rows.Close()
	return scanPlayers(rows)
}

// AppendPick commits one accepted pick: the ledger row, its outbox events
// and the optional completion transition, in a single transaction. A
// racing submission that loses on a uniqueness constraint comes back as
// the matching taxonomy error, never as a silent overwrite.
func (s *Postgres) AppendPick(ctx context.Context, req pick.AppendPickRequest) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p := req.Pick
	if _, err := tx.Exec(ctx, `
		INSERT INTO draft_picks (id, draft_id, pick_number, round, team_id, player_id, picked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.DraftID, p.PickNumber, p.Round, p.TeamID, p.PlayerID, p.PickedAt); err != nil {
		return mapPickConflict(err)
	}

	if req.CompleteDraft {
		if _, err := tx.Exec(ctx, `
			UPDATE drafts SET status = $2, completed_at = now(), updated_at = now()
			WHERE id = $1`, p.DraftID, models.DraftStatusCompleted); err != nil {
			return fmt.Errorf("failed to complete draft: %w", err)
		}
	}

	if err := insertOutbox(ctx, tx, req.Events); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit pick: %w", err)
	}
	return nil
}

// Teams and players

func (s *Postgres) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var t models.Team
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, captain_id, created_at FROM teams WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.CaptainID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &t, nil
}

func (s *Postgres) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, captain_id, created_at FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var out []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CaptainID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Postgres) ListPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, full_name, position, created_at FROM players ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()
	return scanPlayers(rows)
}

func (s *Postgres) ListSeasonStats(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, season_id, games_played, team_games, goals, assists,
		       goals_against_avg, save_pct
		FROM player_season_stats WHERE season_id = $1`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query season stats: %w", err)
	}
	defer rows.Close()

	var out []models.SeasonStats
	for rows.Next() {
		var st models.SeasonStats
		if err := rows.Scan(&st.PlayerID, &st.SeasonID, &st.GamesPlayed, &st.TeamGames,
			&st.Goals, &st.Assists, &st.GoalsAgainstAvg, &st.SavePct); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Outbox

// FetchUnsentOutbox returns unsent events in insertion order. Rows
// written in one transaction share a created_at, so ordering uses the
// seq column instead of the timestamp.
func (s *Postgres) FetchUnsentOutbox(ctx context.Context, limit int) ([]outbox.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, draft_id, event_type, payload, created_at, sent_at
		FROM draft_outbox WHERE sent_at IS NULL
		ORDER BY seq LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var out []outbox.Event
	for rows.Next() {
		var e outbox.Event
		if err := rows.Scan(&e.ID, &e.DraftID, &e.EventType, &e.Payload, &e.CreatedAt, &e.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Postgres) MarkOutboxSent(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE draft_outbox SET sent_at = now() WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to mark outbox sent: %w", err)
	}
	return nil
}

// Helpers

func (s *Postgres) queryPicks(ctx context.Context, sql string, args ...any) ([]models.DraftPick, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks: %w", err)
	}
	defer rows.Close()

	var out []models.DraftPick
	for rows.Next() {
		var p models.DraftPick
		if err := rows.Scan(&p.ID, &p.DraftID, &p.PickNumber, &p.Round,
			&p.TeamID, &p.PlayerID, &p.PickedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pick row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanDraft(row pgx.Row) (*models.Draft, error) {
	var d models.Draft
	err := row.Scan(&d.ID, &d.SeasonID, &d.Status, &d.OrderAssigned, &d.RosterTarget,
		&d.CreatedAt, &d.UpdatedAt, &d.StartedAt, &d.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan draft: %w", err)
	}
	return &d, nil
}

func scanPlayers(rows pgx.Rows) ([]models.Player, error) {
	var out []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.FullName, &p.Position, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func insertOutbox(ctx context.Context, tx pgx.Tx, evts []outbox.Event) error {
	for _, e := range evts {
		if _, err := tx.Exec(ctx, `
			INSERT INTO draft_outbox (id, draft_id, event_type, payload)
			VALUES ($1, $2, $3, $4)`,
			e.ID, e.DraftID, e.EventType, e.Payload); err != nil {
			return fmt.Errorf("failed to insert outbox event: %w", err)
		}
	}
	return nil
}

// mapPickConflict translates uniqueness losses into the ledger taxonomy:
// a taken player is PlayerAlreadyPicked, a taken slot means the turn has
// moved on.
func mapPickConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case "uq_draft_picks_player":
			return pick.ErrPlayerAlreadyPicked
		case "uq_draft_picks_number":
			return pick.ErrNotYourTurn
		}
	}
	return fmt.Errorf("failed to insert pick: %w", err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
