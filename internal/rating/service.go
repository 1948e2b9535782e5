package rating

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/slecomte/rinkside/internal/models"
)

// StatsSource supplies per-player seasonal counting stats. The rating
// engine treats it as a read-only feed; it is typically backed by the
// league's statistics tables.
type StatsSource interface {
	ListSeasonStats(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonStats, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
}

// Service computes and caches per-season player grades. The cache is an
// explicit injected object with a TTL and an invalidation call; recomputing
// a season concurrently is safe because grading is idempotent and
// side-effect free.
type Service struct {
	stats StatsSource
	clock clockwork.Clock
	ttl   time.Duration

	mu      sync.RWMutex
	seasons map[uuid.UUID]cachedSeason
}

type cachedSeason struct {
	grades    map[uuid.UUID]models.Grade
	computedA time.Time
}

// NewService creates a rating service with the given cache TTL.
func NewService(stats StatsSource, clock clockwork.Clock, ttl time.Duration) *Service {
	return &Service{
		stats:   stats,
		clock:   clock,
		ttl:     ttl,
		seasons: make(map[uuid.UUID]cachedSeason),
	}
}

// SeasonGrades returns the grade for every player with stats in the season,
// computing and caching the full season on a miss or an expired entry.
func (s *Service) SeasonGrades(ctx context.Context, seasonID uuid.UUID) (map[uuid.UUID]models.Grade, error) {
	s.mu.RLock()
	entry, ok := s.seasons[seasonID]
	s.mu.RUnlock()
	if ok && s.clock.Since(entry.computedA) < s.ttl {
		return entry.grades, nil
	}

	grades, err := s.computeSeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.seasons[seasonID] = cachedSeason{grades: grades, computedA: s.clock.Now()}
	s.mu.Unlock()

	log.Debug().
		Str("season_id", seasonID.String()).
		Int("players", len(grades)).
		Msg("recomputed season grades")
	return grades, nil
}

// GradeFor returns a single player's grade for the season. Players with no
// recorded stats get the lowest grade.
func (s *Service) GradeFor(ctx context.Context, seasonID, playerID uuid.UUID) (models.Grade, error) {
	grades, err := s.SeasonGrades(ctx, seasonID)
	if err != nil {
		return models.GradeDMinus, err
	}
	if g, ok := grades[playerID]; ok {
		return g, nil
	}
	return models.GradeDMinus, nil
}

// Invalidate drops the cached grades for a season. Called when the
// statistics the grades derive from change.
func (s *Service) Invalidate(seasonID uuid.UUID) {
	s.mu.Lock()
	delete(s.seasons, seasonID)
	s.mu.Unlock()
}

func (s *Service) computeSeason(ctx context.Context, seasonID uuid.UUID) (map[uuid.UUID]models.Grade, error) {
	stats, err := s.stats.ListSeasonStats(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list season stats: %w", err)
	}
	players, err := s.stats.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	byID := make(map[uuid.UUID]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	grades := make(map[uuid.UUID]models.Grade, len(stats))
	for _, st := range stats {
		grades[st.PlayerID] = GradePlayer(byID[st.PlayerID], st)
	}
	return grades, nil
}
