package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

// render writes an HTML component, logging render failures
func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logger.Error("render failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
