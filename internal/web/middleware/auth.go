package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/fitness-tracking/internal/model"
)

const userContextKey contextKey = "user"

// UserSource looks up the signed-in account for a client
type UserSource interface {
	CurrentUser(clientID model.ClientID) *model.Account
}

// GetUser retrieves the signed-in account from the request context
// Returns nil if the client is signed out
func GetUser(ctx context.Context) *model.Account {
	user, _ := ctx.Value(userContextKey).(*model.Account)
	return user
}

// CurrentUser stores the client's signed-in account, if any, in the request context
func CurrentUser(users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := users.CurrentUser(GetClientID(r.Context()))
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
