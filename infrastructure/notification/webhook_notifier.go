// Package notification delivers session events to webhook endpoints.
package notification

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/pitchroom/domain/notification"
	"github.com/felixgeelhaar/pitchroom/infrastructure/logging"
)

// WebhookNotifierConfig configures the webhook notifier.
type WebhookNotifierConfig struct {
	// Endpoints are the webhook endpoints to notify.
	Endpoints []notification.Endpoint
	// BatcherConfig configures batching.
	BatcherConfig BatcherConfig
	// SenderConfig configures the HTTP sender.
	SenderConfig SenderConfig
}

// DefaultWebhookNotifierConfig returns sensible defaults.
func DefaultWebhookNotifierConfig() WebhookNotifierConfig {
	return WebhookNotifierConfig{
		BatcherConfig: DefaultBatcherConfig(),
		SenderConfig:  DefaultSenderConfig(),
	}
}

// WebhookNotifier batches events in the background and posts each batch
// to every subscribed endpoint. Notify never waits on the network.
type WebhookNotifier struct {
	endpoints []notification.Endpoint
	sender    *Sender
	batcher   *batcher

	mu     sync.RWMutex
	closed bool
}

// NewWebhookNotifier creates a notifier and starts its delivery goroutine.
func NewWebhookNotifier(config WebhookNotifierConfig) *WebhookNotifier {
	w := &WebhookNotifier{
		endpoints: config.Endpoints,
		sender:    NewSender(config.SenderConfig),
	}
	w.batcher = newBatcher(config.BatcherConfig, func(events []*notification.Event) {
		w.deliver(context.Background(), events)
	})
	return w
}

// Notify queues an event. When the queue is full the event is dropped
// and logged.
func (w *WebhookNotifier) Notify(_ context.Context, event *notification.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return notification.ErrNotifierClosed
	}
	if !w.batcher.offer(event) {
		logging.Warn().
			Add(logging.SessionID(event.SessionID)).
			Add(logging.Str("event_type", string(event.Type))).
			Msg("webhook queue full, dropping event")
	}
	return nil
}

// Close flushes queued events and waits for their delivery or ctx.
func (w *WebhookNotifier) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		w.batcher.stop()
	}
	w.mu.Unlock()

	select {
	case <-w.batcher.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Endpoints returns the configured endpoints.
func (w *WebhookNotifier) Endpoints() []notification.Endpoint {
	return w.endpoints
}

// deliver sends a batch to all subscribed endpoints in parallel.
func (w *WebhookNotifier) deliver(ctx context.Context, events []*notification.Event) {
	var wg sync.WaitGroup
	for i := range w.endpoints {
		ep := &w.endpoints[i]
		selected := ep.Select(events)
		if len(selected) == 0 {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := w.sender.Send(ctx, ep, selected); err != nil {
				logging.Error().
					Add(logging.Str("endpoint", ep.URL)).
					Add(logging.Str("endpoint_name", ep.Name)).
					Add(logging.Count(len(selected))).
					Add(logging.ErrorField(err)).
					Msg("webhook delivery failed")
				return
			}
			logging.Debug().
				Add(logging.Str("endpoint", ep.URL)).
				Add(logging.Count(len(selected))).
				Msg("webhook delivered")
		}()
	}
	wg.Wait()
}

// Ensure WebhookNotifier implements notification.Notifier
var _ notification.Notifier = (*WebhookNotifier)(nil)
