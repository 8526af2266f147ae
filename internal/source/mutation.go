package source

import "sync"

// Mutation describes a splice of the collection: Removed items starting at
// Start were replaced by Added items.
type Mutation struct {
	Start   int
	Removed int
	Added   int
}

// Listener receives mutations after they are applied.
type Listener func(Mutation)

// Observable is a collection that reports its mutations.
type Observable interface {
	Subscribe(fn Listener) (cancel func())
}

type subscription struct {
	id int
	fn Listener
}

// Notifier fans mutations out to listeners in subscription order. The zero
// value is ready to use and may be embedded.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
}

// Subscribe registers fn and returns a function removing it. Calling the
// returned function more than once is harmless.
func (n *Notifier) Subscribe(fn Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs = append(n.subs, subscription{id: id, fn: fn})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// Notify delivers m to every listener. Listeners run outside the lock and may
// subscribe or unsubscribe.
func (n *Notifier) Notify(m Mutation) {
	n.mu.Lock()
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, s := range subs {
		s.fn(m)
	}
}
