package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/fitness-tracking/internal/middleware"
)

// Logging creates request logging middleware for the API.
// Health checks are not logged.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger, middleware.LoggingOptions{
		Skip: func(r *http.Request) bool {
			return r.URL.Path == "/api/v1/health"
		},
		Attrs: func(r *http.Request) []slog.Attr {
			if token := extractToken(r); token != "" {
				return []slog.Attr{slog.String("client_id", token)}
			}
			return nil
		},
	})
}
