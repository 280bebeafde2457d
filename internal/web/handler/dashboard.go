package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/services/docstore"
	"github.com/mcoot/fitness-tracking/internal/services/gate"
	"github.com/mcoot/fitness-tracking/internal/web/middleware"
	"github.com/mcoot/fitness-tracking/internal/web/templates/layout"
	"github.com/mcoot/fitness-tracking/internal/web/templates/pages"
)

// DashboardHandler serves the signed-in area
type DashboardHandler struct {
	docs   *docstore.Client
	logger *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(docs *docstore.Client, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		docs:   docs,
		logger: logger.With(slog.String("component", "web.dashboard")),
	}
}

// Home renders the dashboard home page
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		// The gate's view can trail the provider briefly; the provider is authoritative here
		http.Redirect(w, r, gate.RouteLogin, http.StatusSeeOther)
		return
	}

	data := pages.DashboardData{
		PageData: layout.PageData{
			Title: "Dashboard",
			User:  user,
			Flash: middleware.GetFlash(r.Context()),
			Live:  true,
		},
	}

	doc, err := h.docs.Get(r.Context(), model.ProfileRef(user.ID))
	switch {
	case err == nil:
		data.Profile = model.ProfileFromDocument(user.ID, doc)
		data.HasProfile = true
	case errors.Is(err, model.ErrDocumentNotFound):
	default:
		h.logger.Error("profile lookup failed",
			slog.String("account_id", string(user.ID)),
			slog.String("error", err.Error()))
	}

	render(w, r, h.logger, pages.Dashboard(data))
}
