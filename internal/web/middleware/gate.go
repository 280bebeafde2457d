package middleware

import (
	"net/http"

	"github.com/mcoot/fitness-tracking/internal/services/gate"
)

// Gate reports every page navigation to the session gate and follows its
// redirect decisions. Only GET and HEAD requests count as navigations.
func Gate(g *gate.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			decision := g.Visit(GetClientID(r.Context()), r.URL.Path)
			if decision.ShouldRedirect() {
				http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
