package identity

import "sync"

// Notifier tracks the current user and fans state changes out to listeners.
// Provider implementations embed it and call SetUser whenever sign-in state changes.
//
// Deliveries are serialised, so a listener never observes an older user after
// a newer one. Listeners may read the provider but must not change its sign-in
// state synchronously.
type Notifier struct {
	dispatch  sync.Mutex
	mu        sync.Mutex
	current   *User
	nextID    int
	listeners map[int]AuthStateListener
}

func NewNotifier() *Notifier {
	return &Notifier{listeners: make(map[int]AuthStateListener)}
}

func (n *Notifier) OnAuthStateChanged(listener AuthStateListener) func() {
	n.dispatch.Lock()
	defer n.dispatch.Unlock()

	n.mu.Lock()
	if n.listeners == nil {
		n.listeners = make(map[int]AuthStateListener)
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = listener
	current := n.current
	n.mu.Unlock()

	listener(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.listeners, id)
			n.mu.Unlock()
		})
	}
}

// SetUser replaces the current user and notifies every registered listener.
func (n *Notifier) SetUser(user *User) {
	n.dispatch.Lock()
	defer n.dispatch.Unlock()

	n.mu.Lock()
	n.current = user
	listeners := make([]AuthStateListener, 0, len(n.listeners))
	for _, l := range n.listeners {
		listeners = append(listeners, l)
	}
	n.mu.Unlock()

	for _, l := range listeners {
		l(user)
	}
}

func (n *Notifier) CurrentUser() *User {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
