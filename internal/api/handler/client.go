package handler

import (
	"net/http"

	"github.com/mcoot/fitness-tracking/internal/api/response"
	"github.com/mcoot/fitness-tracking/internal/dependencies/ids"
)

// ClientHandler issues client tokens
type ClientHandler struct {
	ids ids.Generator
}

// NewClientHandler creates a new client handler
func NewClientHandler(gen ids.Generator) *ClientHandler {
	return &ClientHandler{ids: gen}
}

// Create handles POST /api/v1/clients
func (h *ClientHandler) Create(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusCreated, response.Client{ClientID: string(h.ids.ClientID())})
}
