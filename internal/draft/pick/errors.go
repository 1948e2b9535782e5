package pick

import "errors"

// Pick submission rejection reasons. All of these are expected,
// user-recoverable conditions, never fatal process errors; the HTTP layer
// maps each to a distinct machine-readable reason so clients know whether
// to refresh state or show a terminal message.
var (
	// ErrDraftNotActive means the draft has not started or is already
	// completed. Terminal for the call.
	ErrDraftNotActive = errors.New("draft is not in progress")

	// ErrNotYourTurn means the acting team is not on the clock for the
	// next pick slot, or lost the race for it. The caller should refresh
	// turn state and may retry when on the clock.
	ErrNotYourTurn = errors.New("team is not on the clock")

	// ErrPlayerAlreadyPicked means the player has already been drafted,
	// or the submitter lost the race for them. The caller should refresh
	// the pool and pick again.
	ErrPlayerAlreadyPicked = errors.New("player already picked in this draft")

	// ErrPlayerNotEligible means the player is not in the draftable pool.
	ErrPlayerNotEligible = errors.New("player is not eligible for this draft")

	// ErrNotAuthorized means the caller is not the recognized
	// representative for the acting team. Terminal, logged as a potential
	// integrity concern.
	ErrNotAuthorized = errors.New("caller is not the team's representative")
)
