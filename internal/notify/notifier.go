// Package notify is the boundary to the league's notification module.
// The draft engine only emits the in_progress transition; delivery
// (e-mail, push) happens elsewhere.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notifier is informed when a draft goes live so representatives can be
// alerted out of band.
type Notifier interface {
	DraftStarted(ctx context.Context, draftID uuid.UUID) error
}

// LogNotifier records the transition in the log. Stand-in wiring until a
// real delivery channel is attached.
type LogNotifier struct{}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// DraftStarted logs the draft-start transition.
func (n *LogNotifier) DraftStarted(ctx context.Context, draftID uuid.UUID) error {
	log.Info().Str("draft_id", draftID.String()).Msg("draft start notification emitted")
	return nil
}
