package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/fitness-tracking/internal/api/apierr"
	"github.com/mcoot/fitness-tracking/internal/api/middleware"
	"github.com/mcoot/fitness-tracking/internal/api/response"
	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/services/docstore"
)

// ProfileHandler serves profile documents
type ProfileHandler struct {
	docs *docstore.Client
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(docs *docstore.Client) *ProfileHandler {
	return &ProfileHandler{docs: docs}
}

// Get handles GET /api/v1/profiles/{id}. "me" names the caller's own profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	id := model.AccountID(mux.Vars(r)["id"])
	if id == "me" {
		id = user.ID
	}
	if id != user.ID {
		apierr.WriteError(w, apierr.NewForbiddenError("Profiles are only visible to their owner"))
		return
	}

	doc, err := h.docs.Get(r.Context(), h.docs.Doc(model.ProfilesCollection, string(id)))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(model.ProfileFromDocument(id, doc)))
}
