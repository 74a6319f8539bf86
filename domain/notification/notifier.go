package notification

import (
	"context"
	"slices"
)

// Notifier delivers session events.
type Notifier interface {
	// Notify queues an event for delivery. It must not block on delivery.
	Notify(ctx context.Context, event *Event) error

	// Close delivers anything queued and releases resources.
	Close(ctx context.Context) error
}

// Endpoint represents a webhook endpoint configuration.
type Endpoint struct {
	// Name is an optional friendly name for the endpoint.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// URL is the webhook endpoint URL.
	URL string `json:"url" yaml:"url"`
	// Secret is the shared secret for HMAC signing.
	Secret string `json:"secret,omitempty" yaml:"secret,omitempty"`
	// Headers are additional HTTP headers to include.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	// Events restricts delivery to these types. Empty means all.
	Events []EventType `json:"events,omitempty" yaml:"events,omitempty"`
}

// Accepts reports whether the endpoint subscribes to event.
func (e *Endpoint) Accepts(event *Event) bool {
	return len(e.Events) == 0 || slices.Contains(e.Events, event.Type)
}

// Select returns the events the endpoint subscribes to.
func (e *Endpoint) Select(events []*Event) []*Event {
	if len(e.Events) == 0 {
		return events
	}
	out := make([]*Event, 0, len(events))
	for _, ev := range events {
		if e.Accepts(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// NopNotifier discards every event.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, *Event) error { return nil }

// Close implements Notifier.
func (NopNotifier) Close(context.Context) error { return nil }
