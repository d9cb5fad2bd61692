package gateway

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/wordparty/internal/events"
	"github.com/mcdev12/wordparty/internal/models"
	"github.com/mcdev12/wordparty/internal/registry"
	"github.com/mcdev12/wordparty/internal/words"
)

type MockWordSupply struct {
	mock.Mock
}

func (m *MockWordSupply) GetActiveCategories(ctx context.Context) []models.Category {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category)
}

func (m *MockWordSupply) GetRandomWordPair(ctx context.Context, categoryID string) (models.WordPair, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(models.WordPair), args.Error(1)
}

func newTestGateway(supply WordSupply) (*Gateway, *registry.Registry, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	reg := registry.New(clock)
	cm := NewConnectionManager(DefaultConnectionConfig())
	g := NewGateway(cm, reg, supply, events.NoopPublisher{}, clock, DefaultConfig())
	return g, reg, clock
}

func clientEvent(t *testing.T, event ClientEvent) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}

func TestJoinRoomMapsSocketIntoRegistry(t *testing.T) {
	g, reg, _ := newTestGateway(&MockWordSupply{})
	conn := &Connection{ID: "s1", Manager: g.cm}

	g.handleClientMessage(conn, clientEvent(t, ClientEvent{Type: ClientEventJoinRoom, RoomID: "room-A"}))

	room, ok := reg.FindRoomForSocket("s1")
	require.True(t, ok)
	assert.Equal(t, "room-A", room.ID)
}

func TestJoinSecondRoomLeavesMembershipIntact(t *testing.T) {
	g, reg, _ := newTestGateway(&MockWordSupply{})
	conn := &Connection{ID: "s1", Manager: g.cm}

	g.handleClientMessage(conn, clientEvent(t, ClientEvent{Type: ClientEventJoinRoom, RoomID: "room-A"}))
	g.handleClientMessage(conn, clientEvent(t, ClientEvent{Type: ClientEventJoinRoom, RoomID: "room-B"}))

	room, ok := reg.FindRoomForSocket("s1")
	require.True(t, ok)
	assert.Equal(t, "room-A", room.ID)
	_, ok = reg.GetRoom("room-B")
	assert.False(t, ok)
}

func TestLeaveThenDisconnectIsClean(t *testing.T) {
	g, reg, _ := newTestGateway(&MockWordSupply{})
	conn := &Connection{ID: "s1", Manager: g.cm}

	g.handleClientMessage(conn, clientEvent(t, ClientEvent{Type: ClientEventJoinRoom, RoomID: "room-A"}))
	g.handleClientMessage(conn, clientEvent(t, ClientEvent{Type: ClientEventLeaveRoom}))
	g.handleDisconnect("s1")

	_, ok := reg.GetRoom("room-A")
	assert.False(t, ok)
}

func TestStartRoundFailureKeepsRoomIntact(t *testing.T) {
	supply := &MockWordSupply{}
	supply.On("GetRandomWordPair", mock.Anything, "cat-1").
		Return(models.WordPair{}, words.ErrNoWordPair)

	g, reg, _ := newTestGateway(supply)
	conn := &Connection{ID: "s1", Manager: g.cm}

	g.handleClientMessage(conn, clientEvent(t, ClientEvent{Type: ClientEventJoinRoom, RoomID: "room-A"}))
	g.handleClientMessage(conn, clientEvent(t, ClientEvent{Type: ClientEventStartRound, CategoryID: "cat-1"}))

	room, ok := reg.GetRoom("room-A")
	require.True(t, ok)
	assert.Equal(t, []string{"s1"}, room.Members)
	supply.AssertExpectations(t)
}

func TestStartRoundRequiresRoomMembership(t *testing.T) {
	supply := &MockWordSupply{}
	g, _, _ := newTestGateway(supply)
	conn := &Connection{ID: "s1", Manager: g.cm}

	g.handleClientMessage(conn, clientEvent(t, ClientEvent{Type: ClientEventStartRound, CategoryID: "cat-1"}))

	// The supply must never be consulted for a socket outside any room.
	supply.AssertNotCalled(t, "GetRandomWordPair", mock.Anything, mock.Anything)
}

func TestStartRoundDrawsFromRoomCategory(t *testing.T) {
	supply := &MockWordSupply{}
	supply.On("GetRandomWordPair", mock.Anything, "animals").
		Return(models.WordPair{Word: "elephant", Ref: "mammal"}, nil)

	g, _, _ := newTestGateway(supply)
	conn := &Connection{ID: "s1", Manager: g.cm}

	g.handleClientMessage(conn, clientEvent(t, ClientEvent{Type: ClientEventJoinRoom, RoomID: "room-A"}))
	g.handleClientMessage(conn, clientEvent(t, ClientEvent{Type: ClientEventStartRound, CategoryID: "animals"}))

	supply.AssertExpectations(t)
}

func TestMalformedEventIsDropped(t *testing.T) {
	g, reg, _ := newTestGateway(&MockWordSupply{})
	conn := &Connection{ID: "s1", Manager: g.cm}

	g.handleClientMessage(conn, []byte("not json"))

	_, ok := reg.FindRoomForSocket("s1")
	assert.False(t, ok)
}

func TestRoundStartedPayloadSplitsSecretWord(t *testing.T) {
	describer, err := newServerEvent(ServerEventRoundStarted, RoundStartedPayload{
		RoomID:     "room-A",
		CategoryID: "animals",
		Word:       "elephant",
		Ref:        "mammal",
	})
	require.NoError(t, err)

	guesser, err := newServerEvent(ServerEventRoundStarted, RoundStartedPayload{
		RoomID:     "room-A",
		CategoryID: "animals",
		Ref:        "mammal",
	})
	require.NoError(t, err)

	assert.Contains(t, string(describer.Data), "elephant")
	assert.NotContains(t, string(guesser.Data), "elephant")
	assert.Contains(t, string(guesser.Data), "mammal")
}

func TestOthersOfExcludesSender(t *testing.T) {
	room := models.Room{ID: "room-A", Members: []string{"s1", "s2", "s3"}}

	others := othersOf(room, "s2")

	assert.ElementsMatch(t, []string{"s1", "s3"}, others)
}
