package mcp

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection is one session's websocket push channel, used to deliver a
// ledger-injected instruction between request/response cycles rather than
// waiting for the session's next tool call. A single agent may hold
// several concurrent guide sessions, so connections are keyed by session,
// not by agent.
type Connection struct {
	SessionID string
	conn      *websocket.Conn
	mu        sync.Mutex
	closeOnce sync.Once
	closed    bool
	createdAt time.Time
	lastSent  time.Time
}

// NewConnection wraps an already-upgraded websocket connection.
func NewConnection(sessionID string, conn *websocket.Conn) *Connection {
	now := time.Now()
	return &Connection{SessionID: sessionID, conn: conn, createdAt: now, lastSent: now}
}

// SendInstruction pushes a single pending-instruction notification.
func (c *Connection) SendInstruction(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	notification := JSONRPCNotification{
		JSONRPC: "2.0",
		Method:  "guide/instruction",
		Params:  map[string]string{"additional_agent_instructions": text},
	}
	c.lastSent = time.Now()
	return c.conn.WriteJSON(notification)
}

// Close closes the underlying connection. Idempotent.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.conn.Close()
	})
}

// IsClosed reports whether Close has already run.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ConnectionManager tracks one push Connection per live session, with a
// periodic sweep that drops idle or already-closed connections.
type ConnectionManager struct {
	mu           sync.RWMutex
	connections  map[string]*Connection
	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

// NewConnectionManager constructs an empty manager and starts its
// background stale-connection sweep.
func NewConnectionManager() *ConnectionManager {
	m := &ConnectionManager{
		connections:  make(map[string]*Connection),
		shutdownChan: make(chan struct{}),
	}
	go m.sweepStale()
	return m
}

func (m *ConnectionManager) sweepStale() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.shutdownChan:
			return
		case <-ticker.C:
			m.mu.Lock()
			now := time.Now()
			var stale []string
			for sessionID, conn := range m.connections {
				conn.mu.Lock()
				idle := conn.closed || now.Sub(conn.lastSent) > 5*time.Minute
				conn.mu.Unlock()
				if idle {
					stale = append(stale, sessionID)
				}
			}
			m.mu.Unlock()
			for _, sessionID := range stale {
				m.Remove(sessionID)
			}
		}
	}
}

// Shutdown stops the sweep and closes every open connection.
func (m *ConnectionManager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownChan)
		m.mu.Lock()
		for _, conn := range m.connections {
			conn.Close()
		}
		m.connections = make(map[string]*Connection)
		m.mu.Unlock()
	})
}

// Add registers conn for sessionID, replacing and closing any previous
// connection for that session.
func (m *ConnectionManager) Add(sessionID string, conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.connections[sessionID]; ok {
		existing.Close()
	}
	m.connections[sessionID] = conn
}

// Remove drops and closes the connection for sessionID, if any.
func (m *ConnectionManager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conn, ok := m.connections[sessionID]; ok {
		conn.Close()
		delete(m.connections, sessionID)
	}
}

// Get returns the live connection for sessionID, if any.
func (m *ConnectionManager) Get(sessionID string) (*Connection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conn, ok := m.connections[sessionID]
	return conn, ok
}

// PushInstruction sends text to sessionID's push connection, if one is
// currently open. It is a no-op (not an error) when the session has no
// open websocket; the text is not queued on the ledger or anywhere else.
func (m *ConnectionManager) PushInstruction(sessionID, text string) {
	conn, ok := m.Get(sessionID)
	if !ok {
		return
	}
	_ = conn.SendInstruction(text)
}

// BroadcastInstruction pushes text to every open connection, used for
// process-wide signals (workflow phase changes) that are not scoped to
// the session that happened to trigger them.
func (m *ConnectionManager) BroadcastInstruction(text string) {
	m.mu.RLock()
	conns := make([]*Connection, 0, len(m.connections))
	for _, conn := range m.connections {
		conns = append(conns, conn)
	}
	m.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.SendInstruction(text)
	}
}
