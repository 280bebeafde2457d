// Package gate keeps each client's view of the signed-in user in step with the
// identity provider's session-change stream and decides where clients may go.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/mcoot/fitness-tracking/internal/dependencies/clock"
	"github.com/mcoot/fitness-tracking/internal/metrics"
	"github.com/mcoot/fitness-tracking/internal/model"
)

// Routes
const (
	RouteDashboardHome = "/dashboard/home"
	RouteLogin         = "/account/login"
	AccountPrefix      = "/account"
)

// Redirect reasons
const (
	ReasonSignedIn = "signed_in"
	ReasonGuard    = "guard"
)

// ErrClosed is returned when starting a gate that has been closed
var ErrClosed = errors.New("gate closed")

// AuthStateSource is the session-change stream
type AuthStateSource interface {
	OnAuthStateChanged(next func(model.ClientID, *model.Account), onError func(error)) (unsubscribe func())
}

// Navigator moves a client to a route outside of a request, e.g. over SSE.
// Implementations must not block.
type Navigator interface {
	Navigate(ctx context.Context, clientID model.ClientID, route string)
}

// Decision is the gate's verdict for one visit
type Decision struct {
	Redirect string
	Reason   string
}

// ShouldRedirect reports whether the client must be sent elsewhere
func (d Decision) ShouldRedirect() bool {
	return d.Redirect != ""
}

// Config holds optional gate hooks
type Config struct {
	// OnError receives session-change stream failures after they are logged and counted
	OnError func(error)
}

// Gate routes clients according to their session state
type Gate struct {
	source    AuthStateSource
	navigator Navigator
	clock     clock.Clock
	metrics   metrics.Recorder
	logger    *slog.Logger
	cfg       Config

	store *Store

	mu          sync.Mutex
	started     bool
	closed      bool
	unsubscribe func()
	lastErr     error
}

// New creates a Gate. It does not subscribe until Start is called.
func New(source AuthStateSource, navigator Navigator, clk clock.Clock, recorder metrics.Recorder, logger *slog.Logger, cfg Config) *Gate {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Gate{
		source:    source,
		navigator: navigator,
		clock:     clk,
		metrics:   recorder,
		logger:    logger.With(slog.String("component", "gate")),
		cfg:       cfg,
		store:     NewStore(),
	}
}

// Start subscribes to the session-change stream. Only the first call subscribes.
func (g *Gate) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	if g.started {
		return nil
	}
	g.started = true
	g.unsubscribe = g.source.OnAuthStateChanged(g.handleChange, g.handleError)
	g.logger.Info("gate subscribed to session changes")
	return nil
}

// Close unsubscribes from the stream. Safe to call more than once.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
	g.logger.Info("gate closed")
}

// Store exposes the per-client session store
func (g *Gate) Store() *Store {
	return g.store
}

// CurrentUser returns the gate's view of the client's signed-in user
func (g *Gate) CurrentUser(clientID model.ClientID) *model.Account {
	return g.store.Get(clientID).User
}

// Err returns the most recent stream failure, if any
func (g *Gate) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// Visit records that the client is at location and returns where it must go instead, if anywhere
func (g *Gate) Visit(clientID model.ClientID, location string) Decision {
	var decision Decision
	state := g.store.update(clientID, func(st *ClientState) {
		st.Location = location
		st.LastSeen = g.clock.Now()

		if st.pending != "" {
			pending, reason := st.pending, st.pendingReason
			st.pending, st.pendingReason = "", ""
			if pending != location {
				decision = Decision{Redirect: pending, Reason: reason}
				return
			}
		}

		if guardFires(st.User, location) {
			decision = Decision{Redirect: RouteLogin, Reason: ReasonGuard}
		}
	})

	if decision.ShouldRedirect() {
		g.metrics.RecordGateRedirect(decision.Redirect, decision.Reason)
		g.logger.Debug("gate redirect",
			slog.String("client_id", string(clientID)),
			slog.String("from", location),
			slog.String("to", decision.Redirect),
			slog.String("reason", decision.Reason),
			slog.Bool("signed_in", state.User != nil))
	}
	return decision
}

// AwaitUser waits until the gate has processed a notification for accountID,
// or a sign-out when accountID is empty
func (g *Gate) AwaitUser(ctx context.Context, clientID model.ClientID, accountID model.AccountID) bool {
	return g.store.Await(ctx, clientID, func(st ClientState) bool {
		if accountID == "" {
			return st.User == nil
		}
		return st.User != nil && st.User.ID == accountID
	})
}

func (g *Gate) handleChange(clientID model.ClientID, user *model.Account) {
	g.metrics.RecordAuthStateChange(user != nil)

	if user != nil {
		g.logger.Info("session present",
			slog.String("client_id", string(clientID)),
			slog.String("account_id", string(user.ID)))
		g.store.update(clientID, func(st *ClientState) {
			account := *user
			st.User = &account
			st.pending, st.pendingReason = RouteDashboardHome, ReasonSignedIn
		})
		g.navigator.Navigate(context.Background(), clientID, RouteDashboardHome)
		return
	}

	g.logger.Info("session absent", slog.String("client_id", string(clientID)))
	var navigate bool
	g.store.update(clientID, func(st *ClientState) {
		st.User = nil
		st.pending, st.pendingReason = "", ""
		if st.Location != "" && guardFires(nil, st.Location) {
			st.pending, st.pendingReason = RouteLogin, ReasonGuard
			navigate = true
		}
	})
	if navigate {
		g.navigator.Navigate(context.Background(), clientID, RouteLogin)
	}
}

func (g *Gate) handleError(err error) {
	g.logger.Error("session change stream error", slog.String("error", err.Error()))
	g.metrics.RecordStreamError()

	g.mu.Lock()
	g.lastErr = err
	g.mu.Unlock()

	if g.cfg.OnError != nil {
		g.cfg.OnError(err)
	}
}

// guardFires reports whether a signed-out client at location must go to the login page.
// Any location containing the account prefix is exempt, wherever it occurs in the path.
func guardFires(user *model.Account, location string) bool {
	return user == nil && !strings.Contains(location, AccountPrefix)
}
