package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/fitness-tracking/internal/middleware"
)

// Logging creates logging middleware for the web interface.
// Static assets are not logged; page requests carry the client ID.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger, middleware.LoggingOptions{
		Skip: func(r *http.Request) bool {
			return strings.HasPrefix(r.URL.Path, "/static/")
		},
		Attrs: func(r *http.Request) []slog.Attr {
			if c, err := r.Cookie(SessionCookieName); err == nil {
				return []slog.Attr{slog.String("client_id", c.Value)}
			}
			return nil
		},
	})
}
