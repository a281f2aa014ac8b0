package books

import (
	"sync"
	"time"

	"github.com/mrlokans/bookworm/internal/entities"
)

type EventKind string

const (
	EventCreated EventKind = "created"
	EventDeleted EventKind = "deleted"
)

// Event describes one committed change to the store.
type Event struct {
	Kind  EventKind       `json:"kind"`
	Books []entities.Book `json:"books"`
	At    time.Time       `json:"at"`
}

// IDs returns the identities touched by the event.
func (e Event) IDs() []string {
	ids := make([]string, 0, len(e.Books))
	for _, b := range e.Books {
		ids = append(ids, b.ID)
	}
	return ids
}

type broadcaster struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func(Event)
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subscribers: make(map[int]func(Event))}
}

func (b *broadcaster) subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
		})
	}
}

func (b *broadcaster) publish(e Event) {
	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Subscribers returns the number of active subscriptions.
func (s *Store) Subscribers() int {
	s.events.mu.RLock()
	defer s.events.mu.RUnlock()
	return len(s.events.subscribers)
}
