package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/fitness-tracking/internal/api/apierr"
	"github.com/mcoot/fitness-tracking/internal/api/middleware"
	"github.com/mcoot/fitness-tracking/internal/api/request"
	"github.com/mcoot/fitness-tracking/internal/api/response"
	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/services/gate"
	"github.com/mcoot/fitness-tracking/internal/services/identity"
	"github.com/mcoot/fitness-tracking/internal/services/signup"
)

// AccountHandler handles signup and session endpoints
type AccountHandler struct {
	provider     *identity.Provider
	signup       *signup.Flow
	gate         *gate.Gate
	logger       *slog.Logger
	awaitTimeout time.Duration
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(provider *identity.Provider, flow *signup.Flow, g *gate.Gate, logger *slog.Logger, awaitTimeout time.Duration) *AccountHandler {
	if awaitTimeout <= 0 {
		awaitTimeout = 2 * time.Second
	}
	return &AccountHandler{
		provider:     provider,
		signup:       flow,
		gate:         g,
		logger:       logger.With(slog.String("component", "api.account")),
		awaitTimeout: awaitTimeout,
	}
}

// Signup handles POST /api/v1/accounts
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	clientID := middleware.GetClientID(r.Context())
	result := h.signup.Submit(r.Context(), clientID, signup.Form{
		Email:          strings.TrimSpace(req.Email),
		Password:       req.Password,
		PasswordRepeat: req.PasswordRepeat,
	})
	// API clients keep their own form state
	h.signup.Forget(clientID)

	if !result.Created() {
		if result.Err == nil {
			apierr.WriteError(w, apierr.NewPasswordMismatchError())
			return
		}
		apierr.WriteError(w, result.Err)
		return
	}

	resp := response.SignupResponse{Account: response.AccountFromModel(result.Account)}
	if result.ProfileRef != nil {
		profile := response.Profile{ID: string(result.Account.ID), Name: model.DefaultProfileName}
		resp.Profile = &profile
	}
	if result.Err != nil {
		resp.Warning = result.Form.Error
	}
	if h.awaitGate(r.Context(), clientID, result.Account.ID) {
		resp.Redirect = gate.RouteDashboardHome
	}

	response.JSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/v1/session
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("email is required"))
		return
	}
	if req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("password is required"))
		return
	}

	clientID := middleware.GetClientID(r.Context())
	account, err := h.provider.SignInWithEmailAndPassword(r.Context(), clientID, req.Email, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.LoginResponse{Account: response.AccountFromModel(account)}
	if h.awaitGate(r.Context(), clientID, account.ID) {
		resp.Redirect = gate.RouteDashboardHome
	}
	response.JSON(w, http.StatusOK, resp)
}

// Logout handles DELETE /api/v1/session
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if err := h.provider.SignOut(r.Context(), clientID); err != nil {
		apierr.WriteError(w, err)
		return
	}
	h.awaitGate(r.Context(), clientID, "")
	response.NoContent(w)
}

// Session handles GET /api/v1/session. The optional location query
// parameter is reported to the gate as the client's current location.
func (h *AccountHandler) Session(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())

	location := r.URL.Query().Get("location")
	if location == "" {
		location = "/"
	}
	if !strings.HasPrefix(location, "/") {
		apierr.WriteError(w, apierr.NewInvalidRequestError("location must be an absolute path"))
		return
	}

	decision := h.gate.Visit(clientID, location)

	var expiresAt *time.Time
	if session, ok := h.provider.Session(clientID); ok {
		expiresAt = &session.ExpiresAt
	}
	response.JSON(w, http.StatusOK, response.SessionResponseFrom(h.provider.CurrentUser(clientID), expiresAt, location, decision))
}

// awaitGate waits for the gate to see the session change and reports whether it did
func (h *AccountHandler) awaitGate(ctx context.Context, clientID model.ClientID, accountID model.AccountID) bool {
	ctx, cancel := context.WithTimeout(ctx, h.awaitTimeout)
	defer cancel()
	if !h.gate.AwaitUser(ctx, clientID, accountID) {
		h.logger.Warn("gate did not observe session change in time",
			slog.String("client_id", string(clientID)))
		return false
	}
	return true
}
