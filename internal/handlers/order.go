package handlers

import (
	"context"
	"fmt"

	"marketbot/internal/bus"
	"marketbot/internal/domain"
	"marketbot/internal/workflow"
)

// NewOrderNotification announces a newly paid order.
func NewOrderNotification(ctx context.Context, app *bus.Context, ev bus.Event) error {
	if !app.Cfg.Notifications.Enabled || !app.Cfg.Notifications.NewOrder {
		return nil
	}
	o := ev.Order
	app.Notifier.Notify(fmt.Sprintf(
		"New order!\nBuyer: %s\nOrder ID: %s\nPrice: %s\nListing: %q",
		o.BuyerUsername, o.ID, formatPrice(o.Price), o.Title,
	))
	return nil
}

// DeliverOrder runs the delivery workflow for a new order and reports the
// result as a delivery event. A missing rule produces no event.
func DeliverOrder(dw *workflow.DeliveryWorkflow) bus.Handler {
	return func(ctx context.Context, app *bus.Context, ev bus.Event) error {
		if !app.Cfg.AutoDelivery.Enabled {
			return nil
		}
		order := *ev.Order

		out := dw.Deliver(ctx, order, app.Rules, app.Inventory)
		switch out.Status {
		case domain.DeliveryNoRule:
			app.Logger.Info("no delivery rule for order", "order", order.ID, "title", order.Title)
			return nil
		case domain.DeliveryFailure:
			app.Logger.Error("delivery failed", "order", order.ID, "reason", out.Text)
			app.Dispatcher.Emit(ctx, app, bus.DeliveryEvent(order, out.Text, true))
			return nil
		}

		app.Logger.Info("order delivered", "order", order.ID, "remaining", out.Remaining)
		app.Dispatcher.Emit(ctx, app, bus.DeliveryEvent(order, out.Text, false))
		return nil
	}
}

// DeliveryNotification announces a delivery result, success or failure.
func DeliveryNotification(ctx context.Context, app *bus.Context, ev bus.Event) error {
	if !app.Cfg.Notifications.Enabled || !app.Cfg.Notifications.Delivery {
		return nil
	}
	d := ev.Delivery
	if d.Errored {
		app.Notifier.Notify(fmt.Sprintf("Delivery failed for order %s.\nReason: %s", d.Order.ID, d.Text))
	} else {
		app.Notifier.Notify(fmt.Sprintf("Delivered order %s.\n----- PRODUCT -----\n%s", d.Order.ID, d.Text))
	}
	return nil
}
