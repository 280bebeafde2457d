package sse

import (
	"net/http"
	"time"

	"github.com/mcoot/fitness-tracking/internal/model"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 16

	// Reconnect delay suggested to the browser, in milliseconds
	retryMillis = "3000"
)

// Client is one open SSE connection
type Client struct {
	hub         *Hub
	clientID    model.ClientID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE connection for a hub
func NewClient(hub *Hub, clientID model.ClientID) *Client {
	return &Client{
		hub:         hub,
		clientID:    clientID,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ServeSSE streams hub events to the connection until the request ends
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, clientID model.ClientID) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	conn := NewClient(hub, clientID)
	if !hub.Register(conn) {
		http.Error(w, "Stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(conn)

	_, _ = w.Write([]byte("retry: " + retryMillis + "\n\n"))
	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-conn.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
