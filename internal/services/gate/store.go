package gate

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/fitness-tracking/internal/model"
)

// ClientState is what the gate knows about one client
type ClientState struct {
	User     *model.Account
	Location string
	LastSeen time.Time

	// pending is a navigation issued by a notification that the client
	// has not followed yet
	pending       string
	pendingReason string
}

// Pending returns the outstanding navigation, if any
func (s ClientState) Pending() string {
	return s.pending
}

// Store holds per-client gate state
type Store struct {
	mu      sync.RWMutex
	clients map[model.ClientID]*ClientState
	changed chan struct{}
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		clients: make(map[model.ClientID]*ClientState),
		changed: make(chan struct{}),
	}
}

// Get returns a copy of the client's state
func (s *Store) Get(clientID model.ClientID) ClientState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.clients[clientID]
	if !ok {
		return ClientState{}
	}
	return copyState(state)
}

// update applies fn to the client's state under the write lock and wakes waiters
func (s *Store) update(clientID model.ClientID, fn func(*ClientState)) ClientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.clients[clientID]
	if !ok {
		state = &ClientState{}
		s.clients[clientID] = state
	}
	fn(state)

	close(s.changed)
	s.changed = make(chan struct{})
	return copyState(state)
}

// Await blocks until cond holds for the client's state or ctx is done
func (s *Store) Await(ctx context.Context, clientID model.ClientID, cond func(ClientState) bool) bool {
	for {
		s.mu.RLock()
		var state ClientState
		if st, ok := s.clients[clientID]; ok {
			state = copyState(st)
		}
		changed := s.changed
		s.mu.RUnlock()

		if cond(state) {
			return true
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return false
		}
	}
}

// Forget drops the client's state
func (s *Store) Forget(clientID model.ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, clientID)
}

// Prune drops signed-out clients not seen since before
func (s *Store) Prune(before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, state := range s.clients {
		if state.User == nil && state.LastSeen.Before(before) {
			delete(s.clients, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func copyState(state *ClientState) ClientState {
	out := *state
	if state.User != nil {
		user := *state.User
		out.User = &user
	}
	return out
}
