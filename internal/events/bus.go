package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// Handler receives published events. Handlers run on the publisher's goroutine
// and must not block.
type Handler func(event *Event)

// SubscriptionID identifies a subscription for Unsubscribe
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Bus fans events out to subscribers
type Bus struct {
	mu     sync.RWMutex
	subs   map[EventType][]subscription
	nextID SubscriptionID
	log    zerolog.Logger
}

// NewBus creates an empty bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subs: make(map[EventType][]subscription),
		log:  log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for one event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[eventType] = append(b.subs[eventType], subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a handler from every event type it was registered for
func (b *Bus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subs {
		kept := subs[:0]
		for _, s := range subs {
			if s.id != id {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(b.subs, eventType)
		} else {
			b.subs[eventType] = kept
		}
	}
}

// Publish delivers an event to all handlers of its type
func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[event.Type]))
	copy(subs, b.subs[event.Type])
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s, event)
	}
}

func (b *Bus) deliver(s subscription, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("event_type", string(event.Type)).
				Msg("Event handler panicked")
		}
	}()
	s.handler(event)
}

// SubscriberCount returns the number of handlers for an event type
func (b *Bus) SubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[eventType])
}
