package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marketbot/internal/domain"
)

const (
	deliverySendAttempts = 3
	deliverySendDelay    = 1 * time.Second
)

// DeliveryWorkflow resolves a paid order to a delivery rule, renders the
// product text, and sends it to the buyer with bounded retries. A unit popped
// from inventory is pushed back whenever the send ultimately fails, so
// undelivered stock is never consumed.
type DeliveryWorkflow struct {
	client domain.MarketplaceClient
	logger *slog.Logger

	// Attempts and Delay default to the marketplace-safe values; tests tune
	// them down.
	Attempts int
	Delay    time.Duration
}

func NewDeliveryWorkflow(client domain.MarketplaceClient, logger *slog.Logger) *DeliveryWorkflow {
	return &DeliveryWorkflow{
		client:   client,
		logger:   logger,
		Attempts: deliverySendAttempts,
		Delay:    deliverySendDelay,
	}
}

// Deliver processes one completed order against the configured rules.
// The first rule whose Match is a substring of the order title wins, in rule
// order. The retry loop intentionally blocks the calling goroutine.
func (w *DeliveryWorkflow) Deliver(ctx context.Context, order domain.Order, rules []domain.DeliveryRule, inv domain.InventoryResolver) domain.DeliveryOutcome {
	var rule *domain.DeliveryRule
	for i := range rules {
		if strings.Contains(order.Title, rules[i].Match) {
			rule = &rules[i]
			break
		}
	}
	if rule == nil {
		return domain.DeliveryOutcome{Status: domain.DeliveryNoRule, Remaining: -1}
	}

	// A failed lookup leaves channel zero; the send is still attempted so
	// the failure surfaces through the normal retry path.
	channel, err := w.client.ResolveChannelForUser(ctx, order.BuyerUsername)
	if err != nil {
		w.logger.Warn("cannot resolve buyer conversation", "buyer", order.BuyerUsername, "err", err)
	}

	text := RenderOrder(rule.Response, order)

	if rule.Inventory == "" {
		if err := w.sendWithRetry(ctx, channel, text, order.ID); err != nil {
			return domain.DeliveryOutcome{Status: domain.DeliveryFailure, Text: err.Error(), Remaining: -1}
		}
		return domain.DeliveryOutcome{Status: domain.DeliverySuccess, Text: text, Remaining: -1}
	}

	src, ok := inv.Source(rule.Inventory)
	if !ok {
		return domain.DeliveryOutcome{
			Status:    domain.DeliveryFailure,
			Text:      fmt.Sprintf("unknown inventory source %q", rule.Inventory),
			Remaining: -1,
		}
	}

	item, err := src.PopOne(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrInventoryEmpty) {
			return domain.DeliveryOutcome{Status: domain.DeliveryFailure, Text: "out of stock", Remaining: 0}
		}
		return domain.DeliveryOutcome{Status: domain.DeliveryFailure, Text: err.Error(), Remaining: -1}
	}

	text = strings.ReplaceAll(text, "$product", item)

	if err := w.sendWithRetry(ctx, channel, text, order.ID); err != nil {
		// The unit never reached the buyer: put it back.
		if pushErr := src.PushBack(ctx, item); pushErr != nil {
			w.logger.Error("cannot restore undelivered unit",
				"order", order.ID, "inventory", rule.Inventory, "err", pushErr)
		}
		remaining, _ := src.Count(ctx)
		return domain.DeliveryOutcome{Status: domain.DeliveryFailure, Text: err.Error(), Remaining: remaining}
	}

	remaining, err := src.Count(ctx)
	if err != nil {
		remaining = -1
	}
	return domain.DeliveryOutcome{Status: domain.DeliverySuccess, Text: text, Remaining: remaining}
}

func (w *DeliveryWorkflow) sendWithRetry(ctx context.Context, channel int64, text, orderID string) error {
	var lastErr error
	for attempt := 1; attempt <= w.Attempts; attempt++ {
		lastErr = w.client.SendMessage(ctx, channel, text)
		if lastErr == nil {
			return nil
		}
		w.logger.Warn("delivery send failed",
			"order", orderID, "attempt", attempt, "err", lastErr)
		if attempt < w.Attempts {
			time.Sleep(w.Delay)
		}
	}
	return fmt.Errorf("send failed after %d attempts: %w", w.Attempts, lastErr)
}
