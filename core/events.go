package core

import (
	"sync"
	"time"
)

type EventType string

const (
	EventClockIn  EventType = "CLOCK_IN"
	EventClockOut EventType = "CLOCK_OUT"
	EventAddBreak EventType = "ADD_BREAK"
	EventEndBreak EventType = "END_BREAK"
	EventUpdate   EventType = "UPDATE"
)

// Event is the tagged change notification published after every successful
// mutation. Receivers treat it as a cache-invalidation hint and re-query;
// the payload is advisory, not authoritative.
type Event struct {
	Type     EventType `json:"type"`
	UserID   string    `json:"user_id"`
	RecordID string    `json:"record_id"`
	At       time.Time `json:"at"`
}

// EventBus carries change notifications between concurrent sessions.
// Delivery is fire-and-forget with no guarantee.
type EventBus interface {
	Publish(e Event)
	// Subscribe registers a handler and returns its unsubscribe func.
	// Handlers run on their own goroutine and must not assume ordering.
	Subscribe(handler func(Event)) (unsubscribe func())
}

// Broadcaster is the in-process EventBus.
type Broadcaster struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]func(Event))}
}

func (b *Broadcaster) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, handler := range b.subs {
		go handler(e)
	}
}

func (b *Broadcaster) Subscribe(handler func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}
