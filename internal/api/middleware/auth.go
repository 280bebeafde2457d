package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/fitness-tracking/internal/api/apierr"
	"github.com/mcoot/fitness-tracking/internal/dependencies/ids"
	"github.com/mcoot/fitness-tracking/internal/model"
)

type contextKey string

const (
	clientContextKey contextKey = "client"
	userContextKey   contextKey = "user"
)

// UserSource resolves the signed-in account of a client
type UserSource interface {
	CurrentUser(clientID model.ClientID) *model.Account
}

// Client requires a client token. The token is the client ID issued by POST /clients.
func Client() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" || !ids.ValidClientID(token) {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), clientContextKey, model.ClientID(token))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser requires the client to have a signed-in account. Apply after Client.
func RequireUser(users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := users.CurrentUser(GetClientID(r.Context()))
			if user == nil {
				apierr.WriteError(w, apierr.NewSignInRequiredError())
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the client token from the request
func extractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to the web session cookie
	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetClientID returns the authenticated client from the request context
func GetClientID(ctx context.Context) model.ClientID {
	id, _ := ctx.Value(clientContextKey).(model.ClientID)
	return id
}

// GetUser returns the signed-in account from the request context
func GetUser(ctx context.Context) *model.Account {
	user, _ := ctx.Value(userContextKey).(*model.Account)
	return user
}

// MustGetUser returns the signed-in account or panics
func MustGetUser(ctx context.Context) *model.Account {
	user := GetUser(ctx)
	if user == nil {
		panic("no user in context - RequireUser middleware not applied?")
	}
	return user
}
