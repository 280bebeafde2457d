package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/services/gate"
	"github.com/mcoot/fitness-tracking/internal/services/identity"
	"github.com/mcoot/fitness-tracking/internal/services/signup"
	"github.com/mcoot/fitness-tracking/internal/web/middleware"
	"github.com/mcoot/fitness-tracking/internal/web/templates/layout"
	"github.com/mcoot/fitness-tracking/internal/web/templates/pages"
)

const routeSignup = "/account/signup"

// Login page messages
const (
	msgLoginFailed = "Email or password is incorrect."
)

// AccountHandler serves the login, signup and logout flows
type AccountHandler struct {
	provider     *identity.Provider
	signup       *signup.Flow
	gate         *gate.Gate
	logger       *slog.Logger
	awaitTimeout time.Duration
}

// NewAccountHandler creates a new AccountHandler. awaitTimeout bounds how long
// a form submission waits for the gate to see the resulting session change.
func NewAccountHandler(provider *identity.Provider, flow *signup.Flow, g *gate.Gate, logger *slog.Logger, awaitTimeout time.Duration) *AccountHandler {
	if awaitTimeout <= 0 {
		awaitTimeout = 2 * time.Second
	}
	return &AccountHandler{
		provider:     provider,
		signup:       flow,
		gate:         g,
		logger:       logger.With(slog.String("component", "web.account")),
		awaitTimeout: awaitTimeout,
	}
}

// LoginPage renders the login page
func (h *AccountHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, "", "")
}

// Login handles login form submission
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, "", "Invalid form data")
		return
	}

	clientID := middleware.GetClientID(r.Context())
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	account, err := h.provider.SignInWithEmailAndPassword(r.Context(), clientID, email, password)
	if err != nil {
		h.renderLogin(w, r, http.StatusUnauthorized, email, loginMessage(err))
		return
	}

	h.awaitGate(r.Context(), clientID, account.ID)
	http.Redirect(w, r, gate.RouteLogin, http.StatusSeeOther)
}

// SignupPage renders the signup form from the client's form state
func (h *AccountHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	data := pages.SignupData{
		PageData: h.pageData(r, "Sign up"),
		Form:     h.signup.State(clientID),
	}
	render(w, r, h.logger, pages.Signup(data))
}

// Signup submits the signup form. The outcome is stored as the client's form
// state and the browser is sent back to the signup page, where the gate takes
// over once the new session is visible.
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	clientID := middleware.GetClientID(r.Context())
	form := signup.Form{
		Email:          strings.TrimSpace(r.FormValue("email")),
		Password:       r.FormValue("password"),
		PasswordRepeat: r.FormValue("password_repeat"),
	}

	result := h.signup.Submit(r.Context(), clientID, form)
	if result.Created() {
		if result.Err != nil {
			middleware.SetFlash(w, "error", result.Form.Error)
		}
		h.signup.Forget(clientID)
		h.awaitGate(r.Context(), clientID, result.Account.ID)
	}

	http.Redirect(w, r, routeSignup, http.StatusSeeOther)
}

// DismissSignupError clears the signup error and keeps the entered values
func (h *AccountHandler) DismissSignupError(w http.ResponseWriter, r *http.Request) {
	h.signup.Dismiss(middleware.GetClientID(r.Context()))
	http.Redirect(w, r, routeSignup, http.StatusSeeOther)
}

// Logout signs the client out
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if err := h.provider.SignOut(r.Context(), clientID); err != nil {
		h.logger.Error("sign out failed", slog.String("error", err.Error()))
	}
	h.signup.Forget(clientID)
	h.awaitGate(r.Context(), clientID, "")

	middleware.SetFlash(w, "info", "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// awaitGate waits briefly for the gate to process the session change so the
// redirect that follows lands on the right page
func (h *AccountHandler) awaitGate(ctx context.Context, clientID model.ClientID, accountID model.AccountID) {
	if accountID == "" && h.gate.CurrentUser(clientID) == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, h.awaitTimeout)
	defer cancel()
	if !h.gate.AwaitUser(ctx, clientID, accountID) {
		h.logger.Warn("gate did not observe session change in time",
			slog.String("client_id", string(clientID)))
	}
}

func (h *AccountHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, email, errMsg string) {
	data := pages.LoginData{
		PageData: h.pageData(r, "Log in"),
		Email:    email,
		Error:    errMsg,
	}
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	render(w, r, h.logger, pages.Login(data))
}

func (h *AccountHandler) pageData(r *http.Request, title string) layout.PageData {
	return layout.PageData{
		Title: title,
		User:  middleware.GetUser(r.Context()),
		Flash: middleware.GetFlash(r.Context()),
		Live:  true,
	}
}

func loginMessage(err error) string {
	switch identity.CodeOf(err) {
	case identity.CodeUserNotFound, identity.CodeWrongPassword:
		return msgLoginFailed
	case identity.CodeInvalidEmail:
		return signup.MsgInvalidEmail
	default:
		return signup.MsgUnknown
	}
}
