package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType labels a room lifecycle event.
type EventType string

const (
	EventTypeRoomCreated  EventType = "room_created"
	EventTypeRoomClosed   EventType = "room_closed"
	EventTypeRoundStarted EventType = "round_started"
)

// RoomEvent is the envelope published for every room lifecycle change.
type RoomEvent struct {
	ID        uuid.UUID       `json:"id"`
	RoomID    string          `json:"room_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewRoomEvent stamps a fresh envelope for the given room and type.
func NewRoomEvent(roomID string, eventType EventType, payload json.RawMessage) RoomEvent {
	return RoomEvent{
		ID:        uuid.New(),
		RoomID:    roomID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
