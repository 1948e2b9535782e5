// Package turn derives whose turn it is to pick from a pick number and the
// persisted draft order. It is the single snake-sequencing implementation
// for the whole system; every caller that needs "on the clock" goes
// through it so the math cannot drift between views.
package turn

import (
	"github.com/google/uuid"
	"github.com/slecomte/rinkside/internal/models"
)

// Round returns the 1-based round a pick number falls in.
func Round(pickNumber, teamCount int) int {
	if teamCount < 1 || pickNumber < 1 {
		return 0
	}
	return (pickNumber-1)/teamCount + 1
}

// Position returns the 1-based draft-order position that picks at the
// given pick number. Odd rounds run 1..N, even rounds run N..1.
func Position(pickNumber, teamCount int) int {
	if teamCount < 1 || pickNumber < 1 {
		return 0
	}
	withinRound := (pickNumber-1)%teamCount + 1
	if Round(pickNumber, teamCount)%2 == 0 {
		return teamCount + 1 - withinRound
	}
	return withinRound
}

// ExpectedTeam returns the team on the clock for a pick number given the
// draft order sorted by pick position. Pure and stateless: any observer can
// recompute it from the current accepted-pick count plus the order alone.
// Returns uuid.Nil when the order is empty or the pick number is invalid.
func ExpectedTeam(pickNumber int, order []models.DraftOrder) uuid.UUID {
	pos := Position(pickNumber, len(order))
	if pos == 0 {
		return uuid.Nil
	}
	for _, slot := range order {
		if slot.PickPosition == pos {
			return slot.TeamID
		}
	}
	return uuid.Nil
}
