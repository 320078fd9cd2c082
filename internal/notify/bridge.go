// Package notify fans event notifications out to the configured messenger
// sinks without ever blocking the caller.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"marketbot/internal/domain"
)

const (
	queueSize   = 64
	sendTimeout = 15 * time.Second
)

// Bridge queues notification texts and delivers them from a dedicated
// goroutine. Notify never blocks: when the queue is full the text is dropped
// and logged, so a slow messenger cannot stall event dispatch.
type Bridge struct {
	sinks  []domain.NotificationSink
	queue  chan string
	logger *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func NewBridge(sinks []domain.NotificationSink, logger *slog.Logger) *Bridge {
	b := &Bridge{
		sinks:  sinks,
		queue:  make(chan string, queueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
	go b.run()
	return b
}

// Notify enqueues text for delivery to every sink. Safe for concurrent use.
func (b *Bridge) Notify(text string) {
	if text == "" {
		return
	}
	select {
	case b.queue <- text:
	default:
		b.logger.Warn("notification queue full, dropping", "len", len(text))
	}
}

// Close stops the delivery goroutine after draining what is already queued.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.queue)
		<-b.done
	})
}

func (b *Bridge) run() {
	defer close(b.done)
	for text := range b.queue {
		b.deliver(text)
	}
}

func (b *Bridge) deliver(text string) {
	for _, sink := range b.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := sink.Send(ctx, text); err != nil {
			b.logger.Warn("notification delivery failed", "sink", sink.Name(), "err", err)
		}
		cancel()
	}
}
