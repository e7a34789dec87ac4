package events

import (
	"sync"

	"papertrader/src/model"
)

// Sink receives position and account events. Publish must not block.
type Sink interface {
	Publish(ev model.Event)
}

// Multi fans one event out to several sinks.
type Multi []Sink

func (m Multi) Publish(ev model.Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(ev)
		}
	}
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *Recorder) Publish(ev model.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...)
}

// Types returns the event types in publish order.
func (r *Recorder) Types() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}
