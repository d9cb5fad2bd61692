package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/wordparty/internal/events"
	"github.com/mcdev12/wordparty/internal/models"
)

// RoomRegistry defines what the gateway needs from the room registry.
type RoomRegistry interface {
	CreateOrJoin(roomID, socketID string) (models.Room, error)
	Leave(socketID string)
	DisconnectSocket(socketID string)
	FindRoomForSocket(socketID string) (models.Room, bool)
	GetRoom(roomID string) (models.Room, bool)
}

// WordSupply defines what the gateway needs from the word supply service.
type WordSupply interface {
	GetActiveCategories(ctx context.Context) []models.Category
	GetRandomWordPair(ctx context.Context, categoryID string) (models.WordPair, error)
}

// Config holds gameplay-facing gateway settings.
type Config struct {
	RoundDuration  time.Duration
	BackendTimeout time.Duration
}

// DefaultConfig returns the default gateway settings.
func DefaultConfig() Config {
	return Config{
		RoundDuration:  90 * time.Second,
		BackendTimeout: 5 * time.Second,
	}
}

// Gateway maps socket events onto the room registry and the word supply and
// broadcasts the results to room members.
type Gateway struct {
	cm        *ConnectionManager
	registry  RoomRegistry
	supply    WordSupply
	publisher events.Publisher
	rounds    *roundScheduler
	config    Config
}

// NewGateway wires the gateway. The clock drives round timers and is
// injectable for tests.
func NewGateway(cm *ConnectionManager, reg RoomRegistry, supply WordSupply, publisher events.Publisher, clock clockwork.Clock, config Config) *Gateway {
	g := &Gateway{
		cm:        cm,
		registry:  reg,
		supply:    supply,
		publisher: publisher,
		config:    config,
	}
	g.rounds = newRoundScheduler(clock, g.handleRoundExpired)
	cm.SetDisconnectHandler(g.handleDisconnect)
	return g
}

// ServeWS upgrades an HTTP request into a game socket.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	if _, err := g.cm.UpgradeConnection(w, r, g.handleClientMessage); err != nil {
		// Upgrade already wrote the error response.
		return
	}
}

// ServeCategories serves the active category list for lobby UIs. A backend
// outage degrades to an empty list, never an error page.
func (g *Gateway) ServeCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), g.config.BackendTimeout)
	defer cancel()

	categories := g.supply.GetActiveCategories(ctx)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(categories); err != nil {
		log.Error().Err(err).Msg("failed to write categories response")
	}
}

// handleClientMessage dispatches one inbound socket event.
func (g *Gateway) handleClientMessage(conn *Connection, data []byte) {
	var event ClientEvent
	if err := json.Unmarshal(data, &event); err != nil {
		log.Debug().
			Str("socket_id", conn.ID).
			Msg("dropping malformed client event")
		g.sendError(conn.ID, "malformed event")
		return
	}

	switch event.Type {
	case ClientEventJoinRoom:
		g.handleJoinRoom(conn, event)
	case ClientEventLeaveRoom:
		g.handleLeaveRoom(conn)
	case ClientEventStartRound:
		g.handleStartRound(conn, event)
	case ClientEventGuess:
		g.handleGuess(conn, event)
	default:
		log.Debug().
			Str("socket_id", conn.ID).
			Str("type", string(event.Type)).
			Msg("unknown client event type")
		g.sendError(conn.ID, "unknown event type")
	}
}

func (g *Gateway) handleJoinRoom(conn *Connection, event ClientEvent) {
	if event.RoomID == "" {
		g.sendError(conn.ID, "missing room_id")
		return
	}

	_, existed := g.registry.GetRoom(event.RoomID)

	room, err := g.registry.CreateOrJoin(event.RoomID, conn.ID)
	if err != nil {
		g.sendError(conn.ID, "already in another room, leave it first")
		return
	}

	joined, err := newServerEvent(ServerEventRoomJoined, RoomJoinedPayload{Room: room})
	if err != nil {
		log.Error().Err(err).Msg("failed to build room_joined event")
		return
	}
	g.cm.SendToSocket(conn.ID, joined)

	announcement, err := newServerEvent(ServerEventPlayerJoined, PlayerPayload{
		RoomID:   room.ID,
		SocketID: conn.ID,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to build player_joined event")
		return
	}
	g.cm.SendToSockets(othersOf(room, conn.ID), announcement)

	if !existed {
		g.publishRoomEvent(room.ID, events.EventTypeRoomCreated, nil)
	}
}

func (g *Gateway) handleLeaveRoom(conn *Connection) {
	g.removeFromRoom(conn.ID)
}

// handleDisconnect runs when the transport tears a connection down. It must
// be safe after an explicit leave already happened.
func (g *Gateway) handleDisconnect(socketID string) {
	g.removeFromRoom(socketID)
}

func (g *Gateway) removeFromRoom(socketID string) {
	room, ok := g.registry.FindRoomForSocket(socketID)
	if !ok {
		// Never joined, or already left. Normal state, nothing to do.
		return
	}

	g.registry.Leave(socketID)

	if _, stillExists := g.registry.GetRoom(room.ID); !stillExists {
		g.rounds.cancel(room.ID)
		g.publishRoomEvent(room.ID, events.EventTypeRoomClosed, nil)
		return
	}

	announcement, err := newServerEvent(ServerEventPlayerLeft, PlayerPayload{
		RoomID:   room.ID,
		SocketID: socketID,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to build player_left event")
		return
	}
	g.cm.SendToSockets(othersOf(room, socketID), announcement)
}

func (g *Gateway) handleStartRound(conn *Connection, event ClientEvent) {
	room, ok := g.registry.FindRoomForSocket(conn.ID)
	if !ok {
		g.sendError(conn.ID, "not in a room")
		return
	}
	if event.CategoryID == "" {
		g.sendError(conn.ID, "missing category_id")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.config.BackendTimeout)
	defer cancel()

	pair, err := g.supply.GetRandomWordPair(ctx, event.CategoryID)
	if err != nil {
		// Room membership is untouched; the initiator can retry.
		log.Warn().
			Err(err).
			Str("room_id", room.ID).
			Str("category_id", event.CategoryID).
			Msg("round start failed")
		failed, buildErr := newServerEvent(ServerEventRoundFailed, RoundFailedPayload{
			RoomID:  room.ID,
			Message: "could not start round, please retry",
		})
		if buildErr != nil {
			log.Error().Err(buildErr).Msg("failed to build round_failed event")
			return
		}
		g.cm.SendToSocket(conn.ID, failed)
		return
	}

	// The describer gets the secret word; the rest of the room only the
	// reference and hint.
	describerCopy, err := newServerEvent(ServerEventRoundStarted, RoundStartedPayload{
		RoomID:     room.ID,
		CategoryID: event.CategoryID,
		Word:       pair.Word,
		Ref:        pair.Ref,
		Hint:       pair.Hint,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to build round_started event")
		return
	}
	guesserCopy, err := newServerEvent(ServerEventRoundStarted, RoundStartedPayload{
		RoomID:     room.ID,
		CategoryID: event.CategoryID,
		Ref:        pair.Ref,
		Hint:       pair.Hint,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to build round_started event")
		return
	}

	g.cm.SendToSocket(conn.ID, describerCopy)
	g.cm.SendToSockets(othersOf(room, conn.ID), guesserCopy)

	g.rounds.schedule(room.ID, g.config.RoundDuration)

	payload, _ := json.Marshal(map[string]string{"category_id": event.CategoryID})
	g.publishRoomEvent(room.ID, events.EventTypeRoundStarted, payload)

	log.Info().
		Str("room_id", room.ID).
		Str("category_id", event.CategoryID).
		Int("members", len(room.Members)).
		Msg("round started")
}

func (g *Gateway) handleGuess(conn *Connection, event ClientEvent) {
	room, ok := g.registry.FindRoomForSocket(conn.ID)
	if !ok {
		g.sendError(conn.ID, "not in a room")
		return
	}

	guess, err := newServerEvent(ServerEventGuess, GuessPayload{
		RoomID:   room.ID,
		SocketID: conn.ID,
		Text:     event.Text,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to build guess event")
		return
	}
	g.cm.SendToSockets(room.Members, guess)
}

// handleRoundExpired broadcasts the end of a round when its timer fires.
func (g *Gateway) handleRoundExpired(roomID string) {
	room, ok := g.registry.GetRoom(roomID)
	if !ok {
		return
	}

	ended, err := newServerEvent(ServerEventRoundEnded, RoundEndedPayload{RoomID: roomID})
	if err != nil {
		log.Error().Err(err).Msg("failed to build round_ended event")
		return
	}
	g.cm.SendToSockets(room.Members, ended)
}

func (g *Gateway) sendError(socketID, message string) {
	event, err := newServerEvent(ServerEventError, ErrorPayload{Message: message})
	if err != nil {
		log.Error().Err(err).Msg("failed to build error event")
		return
	}
	g.cm.SendToSocket(socketID, event)
}

func (g *Gateway) publishRoomEvent(roomID string, eventType events.EventType, payload json.RawMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := g.publisher.Publish(ctx, events.NewRoomEvent(roomID, eventType, payload)); err != nil {
		log.Warn().
			Err(err).
			Str("room_id", roomID).
			Str("event_type", string(eventType)).
			Msg("failed to publish room event")
	}
}

// othersOf returns the room members excluding one socket.
func othersOf(room models.Room, socketID string) []string {
	others := make([]string, 0, len(room.Members))
	for _, m := range room.Members {
		if m != socketID {
			others = append(others, m)
		}
	}
	return others
}
