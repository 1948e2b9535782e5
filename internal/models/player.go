package models

import (
	"time"

	"github.com/google/uuid"
)

// Position is a player's on-ice position.
type Position string

const (
	PositionCenter    Position = "C"
	PositionLeftWing  Position = "LW"
	PositionRightWing Position = "RW"
	PositionDefense   Position = "D"
	PositionGoalie    Position = "G"
)

// Player represents a league player.
type Player struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Position  Position  `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// IsGoalie reports whether the player is graded on goaltending stats.
func (p Player) IsGoalie() bool {
	return p.Position == PositionGoalie
}

// SeasonStats holds one player's counting stats for a season, as supplied
// by the statistics source. The draft engine treats this as a read-only feed.
type SeasonStats struct {
	PlayerID    uuid.UUID `json:"player_id"`
	SeasonID    uuid.UUID `json:"season_id"`
	GamesPlayed int       `json:"games_played"`
	TeamGames   int       `json:"team_games"` // games the player's team had available
	Goals       int       `json:"goals"`
	Assists     int       `json:"assists"`

	// Goalie-only fields; zero for skaters.
	GoalsAgainstAvg float64 `json:"goals_against_avg"`
	SavePct         float64 `json:"save_pct"` // 0..1
}

// Points returns total scoring points for the season.
func (s SeasonStats) Points() int {
	return s.Goals + s.Assists
}

// AttendanceRate returns games played over team games available.
// A zero denominator yields zero rather than a division error.
func (s SeasonStats) AttendanceRate() float64 {
	if s.TeamGames == 0 {
		return 0
	}
	return float64(s.GamesPlayed) / float64(s.TeamGames)
}
