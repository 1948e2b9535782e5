package gateway

import (
	"encoding/json"
	"time"

	"github.com/slecomte/rinkside/internal/draft/events"
)

// DraftEvent is the envelope delivered to websocket clients. It matches
// the envelope the outbox publisher puts on the stream.
type DraftEvent struct {
	ID        string          `json:"id"`
	DraftID   string          `json:"draft_id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// ParseEventPayload decodes the event data into its payload struct.
func ParseEventPayload(event *DraftEvent) (interface{}, error) {
	switch event.Type {
	case events.TypePickAccepted:
		var payload events.PickAcceptedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeDraftStatusChanged:
		var payload events.DraftStatusChangedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil // unknown event type
	}
}
