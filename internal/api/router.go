package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/mcoot/fitness-tracking/internal/api/handler"
	"github.com/mcoot/fitness-tracking/internal/api/middleware"
	"github.com/mcoot/fitness-tracking/internal/api/response"
	"github.com/mcoot/fitness-tracking/internal/dependencies/ids"
	"github.com/mcoot/fitness-tracking/internal/services/docstore"
	"github.com/mcoot/fitness-tracking/internal/services/gate"
	"github.com/mcoot/fitness-tracking/internal/services/identity"
	"github.com/mcoot/fitness-tracking/internal/services/signup"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Provider *identity.Provider
	Signup   *signup.Flow
	Gate     *gate.Gate
	Docs     *docstore.Client
	IDs      ids.Generator

	// CORSOrigins lists browser origins allowed to call the API. Empty disables CORS.
	CORSOrigins  []string
	AwaitTimeout time.Duration
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	clientHandler := handler.NewClientHandler(cfg.IDs)
	accountHandler := handler.NewAccountHandler(cfg.Provider, cfg.Signup, cfg.Gate, cfg.Logger, cfg.AwaitTimeout)
	profileHandler := handler.NewProfileHandler(cfg.Docs)

	// Create middleware
	clientMiddleware := middleware.Client()
	userMiddleware := middleware.RequireUser(cfg.Provider)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		// Preflight requests match no route method; answer them here
		api.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	}

	// Unauthenticated routes
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/clients", clientHandler.Create).Methods(http.MethodPost)

	// Routes that need a client token
	client := api.NewRoute().Subrouter()
	client.Use(clientMiddleware)
	client.HandleFunc("/accounts", accountHandler.Signup).Methods(http.MethodPost)
	client.HandleFunc("/session", accountHandler.Login).Methods(http.MethodPost)
	client.HandleFunc("/session", accountHandler.Logout).Methods(http.MethodDelete)
	client.HandleFunc("/session", accountHandler.Session).Methods(http.MethodGet)

	// Routes that need a signed-in account
	profiles := api.PathPrefix("/profiles").Subrouter()
	profiles.Use(clientMiddleware)
	profiles.Use(userMiddleware)
	profiles.HandleFunc("/{id}", profileHandler.Get).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
