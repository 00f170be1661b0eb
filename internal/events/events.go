// Package events fans domain events out to every configured sink: the
// RabbitMQ exchange for other services and the websocket hub for connected
// order screens.
package events

import "context"

// Sink receives one event. Implementations must not block on delivery
// problems; the write that produced the event has already committed.
type Sink interface {
	Publish(ctx context.Context, routingKey string, payload any)
}

// Fanout delivers each event to all sinks in order. Nil sinks are skipped so
// callers can pass optional components directly.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Fanout{sinks: kept}
}

func (f *Fanout) Publish(ctx context.Context, routingKey string, payload any) {
	for _, s := range f.sinks {
		s.Publish(ctx, routingKey, payload)
	}
}
