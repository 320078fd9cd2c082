package runner

import (
	"context"
	"log/slog"
	"time"

	"marketbot/internal/bus"
	"marketbot/internal/domain"
	"marketbot/internal/marketplace"
)

// updateSource abstracts the marketplace update watcher.
type updateSource interface {
	FetchUpdates(ctx context.Context) (marketplace.Updates, error)
}

// Poller fetches marketplace updates on a fixed interval and turns them into
// dispatcher events: one per inbound message, one per new order, and a
// catch-all orders-update event whenever the counters moved.
type Poller struct {
	source   updateSource
	interval time.Duration
	logger   *slog.Logger
}

func NewPoller(source updateSource, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 6 * time.Second
	}
	return &Poller{source: source, interval: interval, logger: logger}
}

// Run polls until ctx is done. A failed fetch is logged and retried on the
// next tick; the loop itself never stops on marketplace errors.
func (p *Poller) Run(ctx context.Context, app *bus.Context) {
	p.logger.Info("update poller started", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.cycle(ctx, app)
		select {
		case <-ctx.Done():
			p.logger.Info("update poller stopping")
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) cycle(ctx context.Context, app *bus.Context) {
	updates, err := p.source.FetchUpdates(ctx)
	if err != nil {
		p.logger.Warn("update fetch failed", "err", err)
		return
	}

	for _, msg := range updates.Messages {
		app.Dispatcher.Emit(ctx, app, bus.NewMessageEvent(msg))
	}
	if updates.OrdersChanged {
		app.Dispatcher.Emit(ctx, app, bus.OrdersUpdateEvent(domain.OrderEvent{ObservedAt: time.Now()}))
		for _, order := range updates.NewOrders {
			app.Dispatcher.Emit(ctx, app, bus.NewOrderEvent(order))
		}
	}
}
