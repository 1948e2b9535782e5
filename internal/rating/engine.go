package rating

import (
	"github.com/slecomte/rinkside/internal/models"
)

// Tunable weights for the grading formula. Skaters are graded on
// points-per-game and attendance; goalies on goals-against average,
// save percentage and attendance.
const (
	skaterProductionWeight = 0.70
	skaterAttendanceWeight = 0.30

	goalieSavePctWeight    = 0.45
	goalieGAAWeight        = 0.35
	goalieAttendanceWeight = 0.20

	// Points-per-game at or above this maps to full production credit.
	ppgCeiling = 3.0
	// A GAA at or above this maps to zero goaltending credit.
	gaaFloor = 6.0
)

// GradePlayer produces a letter grade from a player's seasonal stats.
// Pure function: deterministic, no side effects, always returns a grade.
// A player with no games played gets the lowest grade.
func GradePlayer(player models.Player, stats models.SeasonStats) models.Grade {
	if stats.GamesPlayed == 0 {
		return models.GradeDMinus
	}
	if player.IsGoalie() {
		return gradeFromScore(goalieScore(stats))
	}
	return gradeFromScore(skaterScore(stats))
}

func skaterScore(s models.SeasonStats) float64 {
	ppg := float64(s.Points()) / float64(s.GamesPlayed)
	production := clamp01(ppg / ppgCeiling)
	return skaterProductionWeight*production + skaterAttendanceWeight*clamp01(s.AttendanceRate())
}

func goalieScore(s models.SeasonStats) float64 {
	stopRate := clamp01((gaaFloor - s.GoalsAgainstAvg) / gaaFloor)
	return goalieSavePctWeight*clamp01(s.SavePct) +
		goalieGAAWeight*stopRate +
		goalieAttendanceWeight*clamp01(s.AttendanceRate())
}

// gradeFromScore buckets a 0..1 score onto the 12-step scale.
// Monotone: a higher score never yields a worse grade.
func gradeFromScore(score float64) models.Grade {
	steps := len(models.GradeScale)
	idx := int(score * float64(steps))
	if idx >= steps {
		idx = steps - 1
	}
	if idx < 0 {
		idx = 0
	}
	return models.GradeScale[idx]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
