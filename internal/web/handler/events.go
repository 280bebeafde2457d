package handler

import (
	"net/http"

	"github.com/mcoot/fitness-tracking/internal/web/middleware"
	"github.com/mcoot/fitness-tracking/internal/web/sse"
)

// EventsHandler streams gate navigations to the browser
type EventsHandler struct {
	hubs *sse.HubManager
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(hubs *sse.HubManager) *EventsHandler {
	return &EventsHandler{hubs: hubs}
}

// Events serves the client's SSE stream
func (h *EventsHandler) Events(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	hub := h.hubs.GetOrCreateHub(clientID)
	sse.ServeSSE(w, r, hub, clientID)
}
