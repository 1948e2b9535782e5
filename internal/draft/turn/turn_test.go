package turn

import (
	"testing"

	"github.com/google/uuid"
	"github.com/slecomte/rinkside/internal/models"
)

func TestRound(t *testing.T) {
	cases := []struct {
		name       string
		pickNumber int
		teamCount  int
		want       int
	}{
		{name: "first pick", pickNumber: 1, teamCount: 4, want: 1},
		{name: "last pick of round one", pickNumber: 4, teamCount: 4, want: 1},
		{name: "first pick of round two", pickNumber: 5, teamCount: 4, want: 2},
		{name: "deep round", pickNumber: 37, teamCount: 6, want: 7},
		{name: "single team", pickNumber: 3, teamCount: 1, want: 3},
		{name: "zero teams", pickNumber: 1, teamCount: 0, want: 0},
		{name: "invalid pick number", pickNumber: 0, teamCount: 4, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Round(tc.pickNumber, tc.teamCount); got != tc.want {
				t.Fatalf("Round(%d, %d) = %d, want %d", tc.pickNumber, tc.teamCount, got, tc.want)
			}
		})
	}
}

func TestPositionSnakesOnEvenRounds(t *testing.T) {
	// Three teams: round one runs 1,2,3 and round two runs 3,2,1.
	want := []int{1, 2, 3, 3, 2, 1, 1, 2, 3}
	for i, pos := range want {
		pickNumber := i + 1
		if got := Position(pickNumber, 3); got != pos {
			t.Fatalf("Position(%d, 3) = %d, want %d", pickNumber, got, pos)
		}
	}
}

func TestPositionEveryTeamPicksOncePerRound(t *testing.T) {
	for teamCount := 2; teamCount <= 8; teamCount++ {
		for round := 1; round <= 4; round++ {
			seen := make(map[int]bool, teamCount)
			for i := 1; i <= teamCount; i++ {
				pickNumber := (round-1)*teamCount + i
				pos := Position(pickNumber, teamCount)
				if pos < 1 || pos > teamCount {
					t.Fatalf("Position(%d, %d) = %d out of range", pickNumber, teamCount, pos)
				}
				if seen[pos] {
					t.Fatalf("position %d picked twice in round %d with %d teams", pos, round, teamCount)
				}
				seen[pos] = true
			}
		}
	}
}

func TestExpectedTeam(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	order := []models.DraftOrder{
		{TeamID: a, PickPosition: 1},
		{TeamID: b, PickPosition: 2},
		{TeamID: c, PickPosition: 3},
	}

	want := []uuid.UUID{a, b, c, c, b, a}
	for i, team := range want {
		pickNumber := i + 1
		if got := ExpectedTeam(pickNumber, order); got != team {
			t.Fatalf("ExpectedTeam(%d) = %s, want %s", pickNumber, got, team)
		}
	}
}

func TestExpectedTeamEmptyOrder(t *testing.T) {
	if got := ExpectedTeam(1, nil); got != uuid.Nil {
		t.Fatalf("ExpectedTeam with empty order = %s, want nil uuid", got)
	}
}
