package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one row of the transactional outbox. Rows are written in the
// same transaction as the ledger change they describe and published to the
// stream by the worker, so observers see events in ledger commit order.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	DraftID   uuid.UUID       `json:"draft_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

// NewEvent builds an unsent outbox event with a fresh id.
func NewEvent(draftID uuid.UUID, eventType string, payload []byte) Event {
	return Event{
		ID:        uuid.New(),
		DraftID:   draftID,
		EventType: eventType,
		Payload:   payload,
	}
}
