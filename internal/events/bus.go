package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler receives events. Handlers run on the emitting goroutine and must not block.
type Handler func(event *Event)

// SubscriptionID identifies a subscription for Unsubscribe
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Bus fans events out to subscribers
type Bus struct {
	subscribers map[EventType][]subscription
	log         zerolog.Logger
	nextID      SubscriptionID
	mu          sync.RWMutex
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[EventType][]subscription),
		log:         log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers handler for one event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{id: b.nextID, handler: handler})
	return b.nextID
}

// SubscribeAll registers handler for every known event type and returns
// the subscription ids for each
func (b *Bus) SubscribeAll(handler Handler) []SubscriptionID {
	ids := make([]SubscriptionID, 0, len(AllEventTypes))
	for _, eventType := range AllEventTypes {
		ids = append(ids, b.Subscribe(eventType, handler))
	}
	return ids
}

// Unsubscribe removes subscriptions by id
func (b *Bus) Unsubscribe(ids ...SubscriptionID) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[SubscriptionID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		kept := subs[:0]
		for _, s := range subs {
			if !drop[s.id] {
				kept = append(kept, s)
			}
		}
		b.subscribers[eventType] = kept
	}
}

// Emit publishes a typed event to the subscribers of eventType
func (b *Bus) Emit(eventType EventType, module string, data EventData) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Module:    module,
		Data:      toMap(data),
		typedData: data,
	}
	b.publish(event)
}

func (b *Bus) publish(event *Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers[event.Type]))
	copy(subs, b.subscribers[event.Type])
	b.mu.RUnlock()

	for _, s := range subs {
		b.dispatch(s, event)
	}
}

func (b *Bus) dispatch(s subscription, event *Event) {
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

// toMap flattens typed data into the generic map carried on the wire
func toMap(data EventData) map[string]interface{} {
	if data == nil {
		return map[string]interface{}{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{})
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}
