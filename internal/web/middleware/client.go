package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/mcoot/fitness-tracking/internal/dependencies/ids"
	"github.com/mcoot/fitness-tracking/internal/model"
)

type contextKey string

const (
	// SessionCookieName holds the client ID
	SessionCookieName = "session"

	clientIDContextKey contextKey = "client_id"

	clientCookieMaxAge = 30 * 24 * time.Hour
)

// GetClientID retrieves the client ID from the request context
func GetClientID(ctx context.Context) model.ClientID {
	id, _ := ctx.Value(clientIDContextKey).(model.ClientID)
	return id
}

// WithClientID returns ctx carrying clientID
func WithClientID(ctx context.Context, clientID model.ClientID) context.Context {
	return context.WithValue(ctx, clientIDContextKey, clientID)
}

// ClientCookie identifies the browser by its session cookie, issuing a new
// client ID when the cookie is missing or malformed
func ClientCookie(gen ids.Generator, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var clientID model.ClientID
			if cookie, err := r.Cookie(SessionCookieName); err == nil && ids.ValidClientID(cookie.Value) {
				clientID = model.ClientID(cookie.Value)
			} else {
				clientID = gen.ClientID()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    string(clientID),
					Path:     "/",
					MaxAge:   int(clientCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithClientID(r.Context(), clientID)))
		})
	}
}
