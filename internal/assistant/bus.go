package assistant

import (
	"sync"
	"time"
)

// NavigationEvent is published whenever the user changes route.
type NavigationEvent struct {
	Path     string    `json:"path"`
	Category string    `json:"category,omitempty"`
	At       time.Time `json:"at"`
}

type subscription struct {
	id int
	fn func(NavigationEvent)
}

// NavigationBus delivers navigation events to subscribers synchronously,
// in subscription order.
type NavigationBus struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
}

// NewNavigationBus creates an empty bus.
func NewNavigationBus() *NavigationBus {
	return &NavigationBus{}
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is idempotent.
func (b *NavigationBus) Subscribe(fn func(NavigationEvent)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *NavigationBus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to every current subscriber. Handlers run outside the
// bus lock, so they may subscribe or unsubscribe.
func (b *NavigationBus) Publish(ev NavigationEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// Len returns the number of subscribers.
func (b *NavigationBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
