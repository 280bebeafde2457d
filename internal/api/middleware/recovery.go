package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/fitness-tracking/internal/api/apierr"
	"github.com/mcoot/fitness-tracking/internal/middleware"
)

// Recovery turns handler panics into a JSON 500 carrying the request ID
// that the panic was logged under
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, r *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError(middleware.RequestIDFrom(r.Context())))
	})
}
