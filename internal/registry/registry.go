package registry

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/wordparty/internal/models"
)

// room is the registry-owned live state of one room. Only snapshots of it
// ever leave this package.
type room struct {
	id        string
	members   map[string]struct{}
	createdAt time.Time
}

// Registry is the single source of truth for which sockets are in which room.
// It is safe for concurrent use from any number of event handlers; every
// operation is atomic under one mutex, so no handler can observe a
// half-applied membership change.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*room
	socketRoom map[string]string // reverse map: socket ID -> room ID

	clock clockwork.Clock
}

// New creates an empty registry. The clock stamps room creation times and is
// injectable so tests can use a fake.
func New(clock clockwork.Clock) *Registry {
	return &Registry{
		rooms:      make(map[string]*room),
		socketRoom: make(map[string]string),
		clock:      clock,
	}
}

// CreateOrJoin adds socketID to the room with roomID, creating the room if it
// does not exist yet. Joining a room the socket is already in is a no-op that
// returns the current snapshot. Returns ErrSocketInOtherRoom if the socket is
// still mapped to a different room.
func (r *Registry) CreateOrJoin(roomID, socketID string) (models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.socketRoom[socketID]; ok && current != roomID {
		log.Debug().
			Str("socket_id", socketID).
			Str("room_id", roomID).
			Str("current_room_id", current).
			Msg("join rejected, socket still in another room")
		return models.Room{}, ErrSocketInOtherRoom
	}

	rm, exists := r.rooms[roomID]
	if !exists {
		rm = &room{
			id:        roomID,
			members:   make(map[string]struct{}),
			createdAt: r.clock.Now(),
		}
		r.rooms[roomID] = rm
		log.Info().Str("room_id", roomID).Msg("room created")
	}

	if _, member := rm.members[socketID]; !member {
		rm.members[socketID] = struct{}{}
		r.socketRoom[socketID] = roomID
		log.Debug().
			Str("socket_id", socketID).
			Str("room_id", roomID).
			Int("members", len(rm.members)).
			Msg("socket joined room")
	}

	return snapshot(rm), nil
}

// Leave removes the socket from its current room and clears the reverse
// mapping. It is a no-op when the socket has no room. When the last member
// leaves, the room is deleted in the same critical section, so no lookup ever
// sees an empty room.
func (r *Registry) Leave(socketID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.socketRoom[socketID]
	if !ok {
		return
	}
	delete(r.socketRoom, socketID)

	rm, exists := r.rooms[roomID]
	if !exists {
		return
	}
	delete(rm.members, socketID)

	if len(rm.members) == 0 {
		delete(r.rooms, roomID)
		log.Info().Str("room_id", roomID).Msg("room deleted, last member left")
		return
	}

	log.Debug().
		Str("socket_id", socketID).
		Str("room_id", roomID).
		Int("members", len(rm.members)).
		Msg("socket left room")
}

// DisconnectSocket is the transport layer's disconnect notification. It is
// identical to Leave and safe to call after Leave has already run.
func (r *Registry) DisconnectSocket(socketID string) {
	r.Leave(socketID)
}

// FindRoomForSocket resolves the room a socket belongs to in O(1) via the
// reverse mapping. A false return is the normal state for sockets that have
// not joined anything, not an error.
func (r *Registry) FindRoomForSocket(socketID string) (models.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, ok := r.socketRoom[socketID]
	if !ok {
		return models.Room{}, false
	}
	rm, exists := r.rooms[roomID]
	if !exists {
		return models.Room{}, false
	}
	return snapshot(rm), true
}

// GetRoom returns a snapshot of the room with roomID.
func (r *Registry) GetRoom(roomID string) (models.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, exists := r.rooms[roomID]
	if !exists {
		return models.Room{}, false
	}
	return snapshot(rm), true
}

// RoomCount returns the number of live rooms, for stats endpoints.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// snapshot copies a room into a caller-owned value. Callers must hold at
// least the read lock.
func snapshot(rm *room) models.Room {
	members := make([]string, 0, len(rm.members))
	for m := range rm.members {
		members = append(members, m)
	}
	return models.Room{
		ID:        rm.id,
		Members:   members,
		CreatedAt: rm.createdAt,
	}
}
