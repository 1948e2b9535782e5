package rating

import (
	"testing"

	"github.com/google/uuid"
	"github.com/slecomte/rinkside/internal/models"
)

func skater() models.Player {
	return models.Player{ID: uuid.New(), FullName: "Test Skater", Position: models.PositionCenter}
}

func goalie() models.Player {
	return models.Player{ID: uuid.New(), FullName: "Test Goalie", Position: models.PositionGoalie}
}

func TestGradePlayerZeroGamesIsLowestGrade(t *testing.T) {
	stats := models.SeasonStats{GamesPlayed: 0, TeamGames: 20, Goals: 0, Assists: 0}

	if got := GradePlayer(skater(), stats); got != models.GradeDMinus {
		t.Fatalf("skater with zero games graded %s, want %s", got, models.GradeDMinus)
	}
	if got := GradePlayer(goalie(), stats); got != models.GradeDMinus {
		t.Fatalf("goalie with zero games graded %s, want %s", got, models.GradeDMinus)
	}
}

func TestGradePlayerDeterministic(t *testing.T) {
	p := skater()
	stats := models.SeasonStats{GamesPlayed: 18, TeamGames: 20, Goals: 21, Assists: 15}

	first := GradePlayer(p, stats)
	for i := 0; i < 10; i++ {
		if got := GradePlayer(p, stats); got != first {
			t.Fatalf("grade changed between calls: %s then %s", first, got)
		}
	}
}

func TestGradePlayerSkaterBuckets(t *testing.T) {
	cases := []struct {
		name  string
		stats models.SeasonStats
		want  models.Grade
	}{
		{
			name:  "elite production full attendance",
			stats: models.SeasonStats{GamesPlayed: 20, TeamGames: 20, Goals: 40, Assists: 25},
			want:  models.GradeAPlus,
		},
		{
			name:  "played but never scored",
			stats: models.SeasonStats{GamesPlayed: 20, TeamGames: 20, Goals: 0, Assists: 0},
			want:  models.GradeCMinus,
		},
		{
			name:  "one game no points no attendance credit",
			stats: models.SeasonStats{GamesPlayed: 1, TeamGames: 20, Goals: 0, Assists: 0},
			want:  models.GradeDMinus,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GradePlayer(skater(), tc.stats); got != tc.want {
				t.Fatalf("graded %s, want %s", got, tc.want)
			}
		})
	}
}

func TestGradePlayerSkaterMonotoneInPoints(t *testing.T) {
	prev := models.GradeDMinus
	for points := 0; points <= 60; points += 5 {
		stats := models.SeasonStats{GamesPlayed: 20, TeamGames: 20, Goals: points, Assists: 0}
		got := GradePlayer(skater(), stats)
		if !got.AtLeast(prev) {
			t.Fatalf("grade regressed from %s to %s at %d points", prev, got, points)
		}
		prev = got
	}
}

func TestGradePlayerGoalieUsesGoalieStats(t *testing.T) {
	strong := models.SeasonStats{
		GamesPlayed: 20, TeamGames: 20,
		GoalsAgainstAvg: 1.5, SavePct: 0.93,
	}
	weak := models.SeasonStats{
		GamesPlayed: 20, TeamGames: 20,
		GoalsAgainstAvg: 5.5, SavePct: 0.78,
	}

	strongGrade := GradePlayer(goalie(), strong)
	weakGrade := GradePlayer(goalie(), weak)
	if !strongGrade.AtLeast(weakGrade) || strongGrade == weakGrade {
		t.Fatalf("strong goalie graded %s, weak graded %s", strongGrade, weakGrade)
	}
}

func TestGradeFromScoreClampsExtremes(t *testing.T) {
	// A perfect score must not index past the top of the scale.
	stats := models.SeasonStats{GamesPlayed: 20, TeamGames: 20, Goals: 99, Assists: 99}
	if got := GradePlayer(skater(), stats); got != models.GradeAPlus {
		t.Fatalf("saturated skater graded %s, want %s", got, models.GradeAPlus)
	}

	g := models.SeasonStats{GamesPlayed: 20, TeamGames: 20, GoalsAgainstAvg: 9.0, SavePct: 0}
	got := GradePlayer(goalie(), g)
	if got.Rank() > models.GradeDPlus.Rank() {
		t.Fatalf("leaky goalie graded %s, expected bottom of the scale", got)
	}
}
