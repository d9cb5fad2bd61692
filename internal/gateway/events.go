package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/mcdev12/wordparty/internal/models"
)

// ClientEventType labels an inbound socket event.
type ClientEventType string

const (
	ClientEventJoinRoom   ClientEventType = "join_room"
	ClientEventLeaveRoom  ClientEventType = "leave_room"
	ClientEventStartRound ClientEventType = "start_round"
	ClientEventGuess      ClientEventType = "guess"
)

// ClientEvent is the envelope for every message a client sends.
type ClientEvent struct {
	Type       ClientEventType `json:"type"`
	RoomID     string          `json:"room_id,omitempty"`
	CategoryID string          `json:"category_id,omitempty"`
	Text       string          `json:"text,omitempty"`
}

// ServerEventType labels an outbound socket event.
type ServerEventType string

const (
	ServerEventRoomJoined   ServerEventType = "room_joined"
	ServerEventPlayerJoined ServerEventType = "player_joined"
	ServerEventPlayerLeft   ServerEventType = "player_left"
	ServerEventRoundStarted ServerEventType = "round_started"
	ServerEventRoundFailed  ServerEventType = "round_failed"
	ServerEventRoundEnded   ServerEventType = "round_ended"
	ServerEventGuess        ServerEventType = "guess"
	ServerEventError        ServerEventType = "error"
)

// ServerEvent is the envelope for every message sent to clients.
type ServerEvent struct {
	Type ServerEventType `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// RoomJoinedPayload confirms a join to the joining socket.
type RoomJoinedPayload struct {
	Room models.Room `json:"room"`
}

// PlayerPayload announces a membership change to the rest of the room.
type PlayerPayload struct {
	RoomID   string `json:"room_id"`
	SocketID string `json:"socket_id"`
}

// RoundStartedPayload announces a new round. Word is only present on the
// describer's copy; everyone else sees just the reference and hint.
type RoundStartedPayload struct {
	RoomID     string  `json:"room_id"`
	CategoryID string  `json:"category_id"`
	Word       string  `json:"word,omitempty"`
	Ref        string  `json:"ref"`
	Hint       *string `json:"hint,omitempty"`
}

// RoundFailedPayload tells the initiator the round could not start. The room
// itself is untouched; retrying is safe.
type RoundFailedPayload struct {
	RoomID  string `json:"room_id"`
	Message string `json:"message"`
}

// RoundEndedPayload announces that the round timer expired.
type RoundEndedPayload struct {
	RoomID string `json:"room_id"`
}

// GuessPayload relays a guess to the whole room.
type GuessPayload struct {
	RoomID   string `json:"room_id"`
	SocketID string `json:"socket_id"`
	Text     string `json:"text"`
}

// ErrorPayload reports a rejected client event.
type ErrorPayload struct {
	Message string `json:"message"`
}

func newServerEvent(eventType ServerEventType, payload interface{}) (ServerEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return ServerEvent{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return ServerEvent{Type: eventType, Data: data}, nil
}
