package messaging

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSEvent is the envelope pushed to every connected watcher.
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Event types carried over the feed.
const (
	EventEpochSettled    = "EPOCH_SETTLED"
	EventAnchorCommitted = "ANCHOR_COMMITTED"
	EventAgentBankrupt   = "AGENT_BANKRUPT"
)

const writeTimeout = 5 * time.Second

// WebSocketManager fans simulation events out to live watchers. A slow or dead
// client is dropped rather than allowed to stall the epoch pipeline.
type WebSocketManager struct {
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	events     chan WSEvent

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

var (
	wsManager *WebSocketManager
	once      sync.Once
)

// GetWSManager returns the process-wide manager, starting its loop on first use.
func GetWSManager() *WebSocketManager {
	once.Do(func() {
		wsManager = &WebSocketManager{
			register:   make(chan *websocket.Conn),
			unregister: make(chan *websocket.Conn),
			events:     make(chan WSEvent, 16),
			clients:    make(map[*websocket.Conn]struct{}),
		}
		go wsManager.loop()
	})
	return wsManager
}

func (m *WebSocketManager) loop() {
	for {
		select {
		case conn := <-m.register:
			m.mu.Lock()
			m.clients[conn] = struct{}{}
			m.mu.Unlock()

		case conn := <-m.unregister:
			m.drop(conn)

		case event := <-m.events:
			m.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(m.clients))
			for conn := range m.clients {
				conns = append(conns, conn)
			}
			m.mu.RUnlock()

			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Dropping websocket client: %v", err)
					m.drop(conn)
				}
			}
		}
	}
}

func (m *WebSocketManager) drop(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[conn]; ok {
		delete(m.clients, conn)
		conn.Close()
	}
}

// Register returns the channel new connections are handed to.
func (m *WebSocketManager) Register() chan<- *websocket.Conn {
	return m.register
}

// Unregister returns the channel departing connections are handed to.
func (m *WebSocketManager) Unregister() chan<- *websocket.Conn {
	return m.unregister
}

// ClientCount reports how many watchers are connected.
func (m *WebSocketManager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// BroadcastEvent queues an event for every connected watcher.
func BroadcastEvent(eventType string, payload interface{}) {
	GetWSManager().events <- WSEvent{Type: eventType, Payload: payload}
}
