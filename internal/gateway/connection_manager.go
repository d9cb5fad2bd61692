package gateway

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ConnectionManager owns the live WebSocket connections. It knows nothing
// about rooms; the gateway resolves membership through the registry and asks
// the manager to deliver to specific socket IDs.
type ConnectionManager struct {
	mu          sync.RWMutex
	connections map[string]*Connection

	upgrader websocket.Upgrader
	config   ConnectionConfig

	// Invoked after a connection is gone so the gateway can run membership
	// cleanup.
	onDisconnect func(socketID string)
}

// Connection represents one WebSocket client.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	// Inbound message budget for this connection.
	limiter *rate.Limiter

	// Guards closed, which flips once when the connection is unregistered
	// and its Send channel is closed.
	sendMu sync.Mutex
	closed bool

	ConnectedAt time.Time
	LastPing    time.Time
}

// trySend queues data for the write pump. It returns false when the
// connection is already closed or its buffer is full; it never panics on a
// connection that was torn down concurrently.
func (c *Connection) trySend(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// ConnectionConfig holds configuration for WebSocket connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	// Inbound events per second per connection, with burst headroom.
	MessageRate  rate.Limit
	MessageBurst int
	CheckOrigin  func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		MessageRate:     rate.Limit(10),
		MessageBurst:    20,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewConnectionManager creates a manager with the given configuration.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
}

// SetDisconnectHandler registers the cleanup callback. Must be called before
// the first upgrade.
func (cm *ConnectionManager) SetDisconnectHandler(fn func(socketID string)) {
	cm.onDisconnect = fn
}

// UpgradeConnection upgrades an HTTP request to a WebSocket connection and
// starts its pumps. The returned connection's ID is the socket ID used in the
// room registry. onMessage is called for every inbound frame that passes the
// rate limiter.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, onMessage func(conn *Connection, data []byte)) (*Connection, error) {
	wsConn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return nil, err
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        wsConn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		limiter:     rate.NewLimiter(cm.config.MessageRate, cm.config.MessageBurst),
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump(onMessage)

	log.Info().
		Str("socket_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	return connection, nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn.ID] = conn

	log.Debug().
		Str("socket_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	if _, exists := cm.connections[conn.ID]; !exists {
		cm.mu.Unlock()
		return
	}
	delete(cm.connections, conn.ID)
	cm.mu.Unlock()

	conn.sendMu.Lock()
	conn.closed = true
	close(conn.Send)
	conn.sendMu.Unlock()

	if cm.onDisconnect != nil {
		cm.onDisconnect(conn.ID)
	}

	log.Info().
		Str("socket_id", conn.ID).
		Msg("connection unregistered")
}

// SendToSocket delivers one event to a single socket. Slow or dead
// connections are closed instead of blocking the caller.
func (cm *ConnectionManager) SendToSocket(socketID string, event ServerEvent) {
	cm.mu.RLock()
	conn, exists := cm.connections[socketID]
	cm.mu.RUnlock()
	if !exists {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal server event")
		return
	}

	if !conn.trySend(data) {
		log.Warn().
			Str("socket_id", conn.ID).
			Msg("connection closed or send buffer full, dropping connection")
		cm.unregisterConnection(conn)
		if conn.Conn != nil {
			conn.Conn.Close()
		}
	}
}

// SendToSockets delivers one event to each listed socket, marshaling once.
func (cm *ConnectionManager) SendToSockets(socketIDs []string, event ServerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal server event")
		return
	}

	cm.mu.RLock()
	targets := make([]*Connection, 0, len(socketIDs))
	for _, id := range socketIDs {
		if conn, exists := cm.connections[id]; exists {
			targets = append(targets, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		if !conn.trySend(data) {
			log.Warn().
				Str("socket_id", conn.ID).
				Msg("connection closed or send buffer full, dropping connection")
			cm.unregisterConnection(conn)
			if conn.Conn != nil {
				conn.Conn.Close()
			}
		}
	}
}

// ConnectionCount returns the number of live connections, for stats.
func (cm *ConnectionManager) ConnectionCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// writePump handles sending messages to the WebSocket connection.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("socket_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("socket_id", c.ID).
					Msg("failed to send ping")
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump handles reading messages from the WebSocket connection.
func (c *Connection) readPump(onMessage func(conn *Connection, data []byte)) {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("socket_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		if !c.limiter.Allow() {
			log.Warn().
				Str("socket_id", c.ID).
				Msg("inbound message rate exceeded, dropping message")
			continue
		}

		onMessage(c, message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
