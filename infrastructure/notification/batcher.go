package notification

import (
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/notification"
)

// BatcherConfig configures event batching.
type BatcherConfig struct {
	// MaxBatchSize is the maximum number of events per delivery.
	MaxBatchSize int
	// MaxWait is how long the first queued event waits for company.
	MaxWait time.Duration
	// QueueSize bounds events waiting to be batched.
	QueueSize int
}

// DefaultBatcherConfig returns a sensible default configuration.
func DefaultBatcherConfig() BatcherConfig {
	return BatcherConfig{
		MaxBatchSize: 50,
		MaxWait:      2 * time.Second,
		QueueSize:    256,
	}
}

// batcher drains a queue into batches on a single goroutine.
type batcher struct {
	config BatcherConfig
	in     chan *notification.Event
	flush  func([]*notification.Event)
	done   chan struct{}
}

func newBatcher(config BatcherConfig, flush func([]*notification.Event)) *batcher {
	def := DefaultBatcherConfig()
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = def.MaxBatchSize
	}
	if config.MaxWait <= 0 {
		config.MaxWait = def.MaxWait
	}
	if config.QueueSize <= 0 {
		config.QueueSize = def.QueueSize
	}

	b := &batcher{
		config: config,
		in:     make(chan *notification.Event, config.QueueSize),
		flush:  flush,
		done:   make(chan struct{}),
	}
	go b.run()
	return b
}

// offer queues an event without blocking. It reports false when the
// queue is full.
func (b *batcher) offer(e *notification.Event) bool {
	select {
	case b.in <- e:
		return true
	default:
		return false
	}
}

// stop closes the queue. Queued events are flushed before done closes.
func (b *batcher) stop() {
	close(b.in)
}

func (b *batcher) run() {
	defer close(b.done)

	batch := make([]*notification.Event, 0, b.config.MaxBatchSize)
	var timer *time.Timer
	var fire <-chan time.Time

	send := func() {
		if timer != nil {
			timer.Stop()
			timer, fire = nil, nil
		}
		if len(batch) == 0 {
			return
		}
		out := make([]*notification.Event, len(batch))
		copy(out, batch)
		batch = batch[:0]
		b.flush(out)
	}

	for {
		select {
		case e, ok := <-b.in:
			if !ok {
				send()
				return
			}
			batch = append(batch, e)
			if len(batch) == 1 {
				timer = time.NewTimer(b.config.MaxWait)
				fire = timer.C
			}
			if len(batch) >= b.config.MaxBatchSize {
				send()
			}
		case <-fire:
			timer, fire = nil, nil
			send()
		}
	}
}
