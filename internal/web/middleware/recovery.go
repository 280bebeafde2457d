package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/fitness-tracking/internal/middleware"
)

// Recovery creates panic recovery middleware for the web interface
// Returns an HTML error page on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html lang="en">
<head><title>Something went wrong | Fitness Tracking</title></head>
<body>
<h1 id="error-title">Something went wrong</h1>
<p>We could not finish that request. Please try again.</p>
<p><a href="/dashboard/home">Back to your dashboard</a></p>
</body>
</html>`))
}
