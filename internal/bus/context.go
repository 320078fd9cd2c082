package bus

import (
	"log/slog"

	"marketbot/internal/config"
	"marketbot/internal/domain"
)

// Notifier relays rendered text to the configured notification sinks without
// blocking the caller.
type Notifier interface {
	Notify(text string)
}

// Context is the shared session object handed to every handler invocation:
// the marketplace client, the config snapshot, the delivery rules, and the
// owned sub-components. It is assembled once at startup and treated as
// read-only during dispatch.
type Context struct {
	Cfg        *config.Config
	Client     domain.MarketplaceClient
	Rules      []domain.DeliveryRule
	Inventory  domain.InventoryResolver
	Notifier   Notifier
	Dispatcher *Dispatcher
	Logger     *slog.Logger

	// Sent, when set, is told about every message the bot itself sends so
	// the update poller does not re-emit it as an inbound message.
	Sent func(channelID int64, text string)
}
