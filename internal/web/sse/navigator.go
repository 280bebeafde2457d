package sse

import (
	"context"
	"log/slog"

	"github.com/mcoot/fitness-tracking/internal/model"
)

// Event names sent to browsers
const (
	EventNavigate    = "navigate"
	EventStreamError = "stream-error"
)

// Navigator pushes gate navigations to a client's open tabs
type Navigator struct {
	hubs   *HubManager
	logger *slog.Logger
}

// NewNavigator creates a Navigator over hubs
func NewNavigator(hubs *HubManager, logger *slog.Logger) *Navigator {
	return &Navigator{
		hubs:   hubs,
		logger: logger.With(slog.String("component", "navigator")),
	}
}

// Navigate sends a navigate event to the client. Clients without an open
// stream pick the navigation up on their next page load instead.
func (n *Navigator) Navigate(_ context.Context, clientID model.ClientID, route string) {
	hub := n.hubs.GetHub(clientID)
	if hub == nil {
		return
	}
	hub.BroadcastEvent(EventNavigate, route)
	n.logger.Debug("navigation pushed",
		slog.String("client_id", string(clientID)),
		slog.String("route", route))
}

// NotifyStreamError tells every connected browser that session updates may be stale
func (n *Navigator) NotifyStreamError(err error) {
	n.hubs.BroadcastAll(EventStreamError, "Session updates were interrupted. Reload the page if it looks out of date.")
	n.logger.Warn("stream error pushed to browsers", slog.String("error", err.Error()))
}
