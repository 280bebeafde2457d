package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mcoot/fitness-tracking/internal/model"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles form submissions per client
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	logger *slog.Logger

	mu      sync.Mutex
	clients map[model.ClientID]*clientLimiter
}

// NewRateLimiter allows limit submissions per second per client with the given burst
func NewRateLimiter(limit rate.Limit, burst int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		burst:   burst,
		logger:  logger,
		clients: make(map[model.ClientID]*clientLimiter),
	}
}

// Allow reports whether the client may submit now
func (rl *RateLimiter) Allow(clientID model.ClientID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cl, ok := rl.clients[clientID]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[clientID] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

// Cleanup forgets clients idle for longer than maxIdle
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for id, cl := range rl.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.clients, id)
			removed++
		}
	}
	return removed
}

// Middleware rejects POST requests from clients over their limit
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			clientID := GetClientID(r.Context())
			if !rl.Allow(clientID) {
				rl.logger.Warn("form submission rate limited",
					slog.String("client_id", string(clientID)),
					slog.String("path", r.URL.Path))
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
