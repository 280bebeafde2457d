package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/mcoot/fitness-tracking/internal/dependencies/ids"
	"github.com/mcoot/fitness-tracking/internal/services/docstore"
	"github.com/mcoot/fitness-tracking/internal/services/gate"
	"github.com/mcoot/fitness-tracking/internal/services/identity"
	"github.com/mcoot/fitness-tracking/internal/services/signup"
	"github.com/mcoot/fitness-tracking/internal/web/handler"
	"github.com/mcoot/fitness-tracking/internal/web/middleware"
	"github.com/mcoot/fitness-tracking/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger     *slog.Logger
	Provider   *identity.Provider
	Signup     *signup.Flow
	Gate       *gate.Gate
	Docs       *docstore.Client
	HubManager *sse.HubManager
	IDs        ids.Generator

	CookieSecure bool
	// Form submissions per second per client, and burst. Zero disables limiting.
	FormRateLimit float64
	FormRateBurst int
	// RateLimiter overrides FormRateLimit and FormRateBurst when set
	RateLimiter *middleware.RateLimiter
	// AwaitTimeout bounds how long a form submission waits for the gate
	AwaitTimeout time.Duration
	StaticDir    string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Global middleware: recovery, logging, client identification
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger, nil)
	}

	homeHandler := handler.NewHomeHandler()
	accountHandler := handler.NewAccountHandler(cfg.Provider, cfg.Signup, cfg.Gate, cfg.Logger, cfg.AwaitTimeout)
	dashboardHandler := handler.NewDashboardHandler(cfg.Docs, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(hubManager)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	clientMiddleware := middleware.ClientCookie(cfg.IDs, cfg.CookieSecure)
	userMiddleware := middleware.CurrentUser(cfg.Provider)

	// Live event stream, not a navigation
	events := r.NewRoute().Subrouter()
	events.Use(clientMiddleware)
	events.HandleFunc("/events", eventsHandler.Events).Methods(http.MethodGet)

	// Pages: every navigation passes through the gate
	pages := r.NewRoute().Subrouter()
	pages.Use(clientMiddleware)
	pages.Use(middleware.Gate(cfg.Gate))
	pages.Use(middleware.Flash())
	pages.Use(userMiddleware)
	limiter := cfg.RateLimiter
	if limiter == nil && cfg.FormRateLimit > 0 && cfg.FormRateBurst > 0 {
		limiter = middleware.NewRateLimiter(rate.Limit(cfg.FormRateLimit), cfg.FormRateBurst, cfg.Logger)
	}
	if limiter != nil {
		pages.Use(limiter.Middleware())
	}

	pages.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	pages.HandleFunc("/account/login", accountHandler.LoginPage).Methods(http.MethodGet)
	pages.HandleFunc("/account/login", accountHandler.Login).Methods(http.MethodPost)
	pages.HandleFunc("/account/signup", accountHandler.SignupPage).Methods(http.MethodGet)
	pages.HandleFunc("/account/signup", accountHandler.Signup).Methods(http.MethodPost)
	pages.HandleFunc("/account/signup/dismiss", accountHandler.DismissSignupError).Methods(http.MethodPost)
	pages.HandleFunc("/account/logout", accountHandler.Logout).Methods(http.MethodPost)
	pages.HandleFunc("/dashboard/home", dashboardHandler.Home).Methods(http.MethodGet)

	return r
}
