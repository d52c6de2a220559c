// Package status provides a bounded, best-effort event bus between the
// session orchestrator and whatever is rendering its progress (the CLI
// dashboard). The orchestrator publishes; subscribers drain at their own
// pace, per the specification's "post to a bounded queue consumed by the UI
// loop" design note.
package status

import "time"

// Event is one status transition of a session.
type Event struct {
	SessionID string
	Status    string
	Text      string
	Reason    string
	Error     string
	At        time.Time
}

// Bus fans out Events to any number of subscribers without ever blocking
// the publisher: a full subscriber channel silently drops the event rather
// than stall the orchestrator's worker goroutine.
type Bus struct {
	subs chan chan Event
	pub  chan Event
	add  chan chan Event
	rem  chan chan Event
	done chan struct{}
}

// NewBus starts a bus whose publish queue holds capacity events; each
// subscriber channel holds 16.
func NewBus(capacity int) *Bus {
	b := &Bus{
		pub:  make(chan Event, capacity),
		add:  make(chan chan Event),
		rem:  make(chan chan Event),
		done: make(chan struct{}),
	}
	go b.run(capacity)
	return b
}

func (b *Bus) run(capacity int) {
	subscribers := make(map[chan Event]struct{})
	for {
		select {
		case <-b.done:
			return
		case ch := <-b.add:
			subscribers[ch] = struct{}{}
		case ch := <-b.rem:
			delete(subscribers, ch)
			close(ch)
		case ev := <-b.pub:
			for ch := range subscribers {
				select {
				case ch <- ev:
				default:
					// Subscriber is behind; drop rather than block the
					// orchestrator.
				}
			}
		}
	}
}

// Publish enqueues ev for delivery to current subscribers. Never blocks.
func (b *Bus) Publish(ev Event) {
	select {
	case b.pub <- ev:
	default:
	}
}

// Subscribe returns a channel that receives future events until
// Unsubscribe is called or the bus is closed.
func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	select {
	case b.add <- ch:
	case <-b.done:
		close(ch)
	}
	return ch
}

// Unsubscribe stops delivery to ch and closes it.
func (b *Bus) Unsubscribe(ch chan Event) {
	select {
	case b.rem <- ch:
	case <-b.done:
	}
}

// Close shuts the bus down; subsequent Publish calls are no-ops.
func (b *Bus) Close() {
	close(b.done)
}
