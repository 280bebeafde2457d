package identity

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mcoot/fitness-tracking/internal/model"
)

// AuthStateChange is one session-change notification.
// Account is nil when the client no longer has a signed-in user.
type AuthStateChange struct {
	ClientID model.ClientID
	Account  *model.Account
}

// subscriber receives notifications on its own goroutine so a slow
// callback never blocks the dispatcher
type subscriber struct {
	id      uint64
	next    func(model.ClientID, *model.Account)
	onError func(error)
	events  chan AuthStateChange
	lagged  chan struct{}
	stopped atomic.Bool
}

func (sub *subscriber) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case change, ok := <-sub.events:
			if !ok {
				return
			}
			if !sub.stopped.Load() {
				sub.next(change.ClientID, change.Account)
			}
		case <-sub.lagged:
			if !sub.stopped.Load() && sub.onError != nil {
				sub.onError(ErrStreamLagged)
			}
		}
	}
}

// stream fans out session changes to subscribers
type stream struct {
	logger *slog.Logger
	buffer int

	subscribers map[uint64]*subscriber
	nextID      uint64

	register   chan *subscriber
	unregister chan *subscriber
	// publish is unbuffered: emit returns once the dispatcher has taken the change
	publish   chan AuthStateChange
	done      chan struct{}
	exited    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newStream(logger *slog.Logger, buffer int) *stream {
	if buffer <= 0 {
		buffer = 64
	}
	return &stream{
		logger:      logger,
		buffer:      buffer,
		subscribers: make(map[uint64]*subscriber),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		publish:     make(chan AuthStateChange),
		done:        make(chan struct{}),
		exited:      make(chan struct{}),
	}
}

// run is the dispatcher loop
func (s *stream) run() {
	defer close(s.exited)
	for {
		select {
		case sub := <-s.register:
			s.nextID++
			sub.id = s.nextID
			s.subscribers[sub.id] = sub
			s.wg.Add(1)
			go sub.run(&s.wg)
			s.logger.Debug("auth state subscriber registered",
				slog.Uint64("subscriber", sub.id),
				slog.Int("total_subscribers", len(s.subscribers)))

		case sub := <-s.unregister:
			if _, ok := s.subscribers[sub.id]; ok {
				delete(s.subscribers, sub.id)
				close(sub.events)
				s.logger.Debug("auth state subscriber unregistered",
					slog.Uint64("subscriber", sub.id),
					slog.Int("total_subscribers", len(s.subscribers)))
			}

		case change := <-s.publish:
			for _, sub := range s.subscribers {
				select {
				case sub.events <- change:
				default:
					s.logger.Warn("auth state notification dropped - subscriber buffer full",
						slog.Uint64("subscriber", sub.id),
						slog.String("client_id", string(change.ClientID)))
					select {
					case sub.lagged <- struct{}{}:
					default:
					}
				}
			}

		case <-s.done:
			for id, sub := range s.subscribers {
				close(sub.events)
				delete(s.subscribers, id)
			}
			return
		}
	}
}

func (s *stream) subscribe(next func(model.ClientID, *model.Account), onError func(error)) (func(), error) {
	sub := &subscriber{
		next:    next,
		onError: onError,
		events:  make(chan AuthStateChange, s.buffer),
		lagged:  make(chan struct{}, 1),
	}

	select {
	case s.register <- sub:
	case <-s.done:
		return nil, ErrStreamClosed
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			sub.stopped.Store(true)
			select {
			case s.unregister <- sub:
			case <-s.done:
			}
		})
	}
	return unsubscribe, nil
}

func (s *stream) emit(change AuthStateChange) {
	select {
	case s.publish <- change:
	case <-s.done:
	}
}

// close stops the dispatcher and waits for subscriber goroutines to drain
func (s *stream) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	<-s.exited
	s.wg.Wait()
}
