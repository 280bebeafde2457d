package handler

import (
	"net/http"

	"github.com/mcoot/fitness-tracking/internal/services/gate"
	"github.com/mcoot/fitness-tracking/internal/web/middleware"
)

// HomeHandler handles the site root
type HomeHandler struct{}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Home sends signed-in clients to the dashboard. Signed-out clients never
// get here because the gate sends them to the login page first.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r.Context()) != nil {
		http.Redirect(w, r, gate.RouteDashboardHome, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, gate.RouteLogin, http.StatusSeeOther)
}
