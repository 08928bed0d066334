package event

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type subscriber struct {
	ch     chan Event
	filter Filter
}

type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string]subscriber
	bufferSize  int
}

func NewBus() *InMemoryBus {
	return &InMemoryBus{
		subscribers: make(map[string]subscriber),
		bufferSize:  100,
	}
}

func (b *InMemoryBus) Publish(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, sub := range b.subscribers {
		if sub.filter != nil && !sub.filter(e) {
			continue
		}

		// Notifications are transient; a slow subscriber loses them.
		select {
		case sub.ch <- e:
		default:
			slog.Debug("dropping event for slow subscriber", "subscriber", id, "type", e.Type)
		}
	}
}

func (b *InMemoryBus) Subscribe(filter Filter) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, b.bufferSize)
	b.subscribers[id] = subscriber{ch: ch, filter: filter}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, exists := b.subscribers[id]; exists {
				close(sub.ch)
				delete(b.subscribers, id)
			}
		})
	}

	return ch, unsubscribe
}
