// Package events carries change notifications from the workflows and the
// scheduler to subscribers (websocket clients, metrics), replacing the
// interval re-sync the views would otherwise need.
package events

import (
	"log"
	"sync"
	"time"
)

// Kind names an event type on the bus
type Kind string

const (
	KindTasksDue            Kind = "tasks.due"
	KindVerificationPending Kind = "verification.pending"
	KindItemUpdated         Kind = "item.updated"
	KindItemCreated         Kind = "item.created"
	KindHistoryAppended     Kind = "history.appended"
	KindChecklistState      Kind = "checklist.state"
)

// Event is a single published notification
type Event struct {
	Kind      Kind        `json:"kind"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Publisher is what producers depend on
type Publisher interface {
	Publish(kind Kind, payload interface{})
}

// Bus fans events out to subscribers without ever blocking a publisher.
// A subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	buffer int
	now    func() time.Time
}

// NewBus creates a bus whose subscriber channels hold buffer events
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{
		subs:   make(map[int]chan Event),
		buffer: buffer,
		now:    time.Now,
	}
}

// Subscribe registers a new subscriber. The returned cancel func closes the
// channel and must be called once the subscriber stops reading.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Publish delivers an event to every current subscriber
func (b *Bus) Publish(kind Kind, payload interface{}) {
	ev := Event{Kind: kind, Timestamp: b.now(), Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("events: subscriber %d buffer full, dropping %s", id, kind)
		}
	}
}

// Subscribers reports the current subscriber count
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Discard is a Publisher that drops everything
type Discard struct{}

func (Discard) Publish(Kind, interface{}) {}
