package session

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-signin-client/identity"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrStopped is returned by Wait once the observer has been stopped.
var ErrStopped = errors.New("session observer stopped")

// State is a snapshot of the provider's sign-in state.
type State struct {
	User *identity.User
	// Unsubscribed marks the terminal state delivered when the observer stops.
	Unsubscribed bool
	// Version increases with every provider callback.
	Version uint64
}

func (s State) SignedIn() bool {
	return s.User != nil
}

// Observer mirrors the identity provider's auth state. It is the only writer of
// session state; everything else reads it or subscribes to it.
type Observer struct {
	notifier identity.StateNotifier

	mu          sync.Mutex
	current     State
	started     bool
	stopped     bool
	unsubscribe func()
	nextID      int
	subs        map[int]*Subscription
	changed     chan struct{}
}

func NewObserver(notifier identity.StateNotifier) *Observer {
	return &Observer{
		notifier: notifier,
		subs:     make(map[int]*Subscription),
		changed:  make(chan struct{}),
	}
}

// Start registers with the provider. The provider reports the current user
// immediately, so State is populated by the time Start returns.
func (o *Observer) Start() error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return errors.New("[Observer.Start] already started")
	}
	o.started = true
	o.mu.Unlock()

	unsubscribe := o.notifier.OnAuthStateChanged(o.publish)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		unsubscribe()
		return nil
	}
	o.unsubscribe = unsubscribe
	return nil
}

// Stop deregisters from the provider and closes every subscription after
// delivering an Unsubscribed state. Further provider callbacks are ignored.
func (o *Observer) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	unsubscribe := o.unsubscribe
	o.unsubscribe = nil
	o.current = State{Unsubscribed: true, Version: o.current.Version + 1}
	for id, sub := range o.subs {
		sub.offer(o.current)
		sub.close()
		delete(o.subs, id)
	}
	close(o.changed)
	o.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	log.Debug().Msg("session observer stopped")
}

func (o *Observer) publish(user *identity.User) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return
	}
	o.current = State{User: user, Version: o.current.Version + 1}
	for _, sub := range o.subs {
		sub.offer(o.current)
	}
	close(o.changed)
	o.changed = make(chan struct{})

	log.Debug().Bool("signed_in", user != nil).Uint64("version", o.current.Version).Msg("auth state changed")
}

func (o *Observer) Current() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// User returns the signed in user or nil.
func (o *Observer) User() *identity.User {
	return o.Current().User
}

// Subscribe returns a subscription that immediately holds the current state.
// After Stop it returns an already closed subscription carrying the terminal state.
func (o *Observer) Subscribe() *Subscription {
	o.mu.Lock()
	defer o.mu.Unlock()

	sub := newSubscription()
	sub.offer(o.current)
	if o.stopped {
		sub.close()
		return sub
	}
	id := o.nextID
	o.nextID++
	o.subs[id] = sub
	sub.cancel = func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if _, ok := o.subs[id]; ok {
			delete(o.subs, id)
			sub.close()
		}
	}
	return sub
}

// Wait blocks until match accepts the current state, ctx is done or the
// observer stops.
func (o *Observer) Wait(ctx context.Context, match func(State) bool) (State, error) {
	for {
		o.mu.Lock()
		current, changed, stopped := o.current, o.changed, o.stopped
		o.mu.Unlock()

		if match(current) {
			return current, nil
		}
		if stopped {
			return current, ErrStopped
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return current, errors.Wrap(ctx.Err(), "[Observer.Wait]")
		}
	}
}

// Subscription delivers the latest State. Its channel has room for a single
// value and older undelivered values are replaced, so a slow reader only ever
// sees the newest state.
type Subscription struct {
	ch     chan State
	cancel func()
	closed bool
}

func newSubscription() *Subscription {
	return &Subscription{ch: make(chan State, 1)}
}

// C is closed after the terminal state has been delivered or Close is called.
func (s *Subscription) C() <-chan State {
	return s.ch
}

// Close stops delivery and closes C.
func (s *Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// offer and close are called with the observer lock held.
func (s *Subscription) offer(state State) {
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- state
}

func (s *Subscription) close() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
