package sse

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/fitness-tracking/internal/metrics"
	"github.com/mcoot/fitness-tracking/internal/model"
)

// Hub manages the SSE connections (one per open tab) of a single client
type Hub struct {
	clientID model.ClientID
	conns    map[*Client]bool
	mu       sync.RWMutex
	logger   *slog.Logger
	onChange func(delta int)

	// Channels for managing connections
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a client
func NewHub(clientID model.ClientID, logger *slog.Logger) *Hub {
	return &Hub{
		clientID:   clientID,
		conns:      make(map[*Client]bool),
		logger:     logger.With(slog.String("client_id", string(clientID))),
		onChange:   func(int) {},
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn] = true
			count := len(h.conns)
			h.mu.Unlock()
			h.onChange(1)
			h.logger.Debug("sse connection registered", slog.Int("connections", count))

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[conn]; ok {
				delete(h.conns, conn)
				close(conn.send)
				count := len(h.conns)
				h.mu.Unlock()
				h.onChange(-1)
				h.logger.Debug("sse connection unregistered",
					slog.Duration("connection_duration", time.Since(conn.connectedAt)),
					slog.Int("connections", count))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			dropped := 0
			for conn := range h.conns {
				select {
				case conn.send <- message:
				default:
					dropped++
				}
			}
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("sse message dropped - connection buffer full", slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			count := len(h.conns)
			for conn := range h.conns {
				close(conn.send)
				delete(h.conns, conn)
			}
			h.mu.Unlock()
			h.onChange(-count)
			return
		}
	}
}

// Register adds a connection to the hub. It reports false if the hub is closed.
func (h *Hub) Register(conn *Client) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a connection from the hub
func (h *Hub) Unregister(conn *Client) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Broadcast sends a message to every connection. It never blocks.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("sse broadcast dropped - hub buffer full")
	}
}

// BroadcastEvent sends an SSE event with a name and data
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.Broadcast(formatSSEMessage(eventName, data))
}

// Close shuts down the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// ConnectionCount returns the number of open connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// formatSSEMessage formats an SSE message with event name and data.
// Every line of data gets its own "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteByte('\n')
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// splitLines splits on \n, dropping \r and a single trailing newline
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// HubManager manages hubs for all clients
type HubManager struct {
	hubs    map[model.ClientID]*Hub
	mu      sync.RWMutex
	logger  *slog.Logger
	metrics metrics.Recorder
	total   atomic.Int64
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger, recorder metrics.Recorder) *HubManager {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &HubManager{
		hubs:    make(map[model.ClientID]*Hub),
		logger:  logger.With(slog.String("component", "sse")),
		metrics: recorder,
	}
}

// GetOrCreateHub returns the hub for a client, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(clientID model.ClientID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[clientID]; ok {
		return hub
	}

	hub := NewHub(clientID, m.logger)
	hub.onChange = func(delta int) {
		m.metrics.SetSSEClients(int(m.total.Add(int64(delta))))
	}
	m.hubs[clientID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a client, or nil if it doesn't exist
func (m *HubManager) GetHub(clientID model.ClientID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[clientID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(clientID model.ClientID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[clientID]; ok {
		hub.Close()
		delete(m.hubs, clientID)
	}
}

// BroadcastAll sends an event to every connected client
func (m *HubManager) BroadcastAll(eventName, data string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msg := formatSSEMessage(eventName, data)
	for _, hub := range m.hubs {
		hub.Broadcast(msg)
	}
}

// CleanupEmptyHubs removes hubs with no connections
func (m *HubManager) CleanupEmptyHubs() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, hub := range m.hubs {
		if hub.ConnectionCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("sse empty hubs cleaned up", slog.Int("removed", removed))
	}
	return removed
}

// ConnectionCount returns the number of open connections across all hubs
func (m *HubManager) ConnectionCount() int {
	return int(m.total.Load())
}

// Close shuts down every hub
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}
