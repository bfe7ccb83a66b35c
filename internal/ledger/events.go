package ledger

import (
	"sync"
	"time"
)

// Event describes a failed store write surfaced on the side channel. The
// HTTP layer also receives the error directly; subscribers exist so UIs can
// toast failures from writes issued elsewhere.
type Event struct {
	Op            string    `json:"op"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Error         string    `json:"error"`
	At            time.Time `json:"at"`
}

// Events is a small fan-out of write failures. Slow subscribers drop
// events instead of blocking the write path.
type Events struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewEvents constructs an event stream.
func NewEvents() *Events {
	return &Events{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel of future events and a cancel function.
func (e *Events) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.next
	e.next++
	ch := make(chan Event, 16)
	e.subs[id] = ch
	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if sub, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to all current subscribers.
func (e *Events) Publish(ev Event) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
