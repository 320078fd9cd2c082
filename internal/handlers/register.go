package handlers

import (
	"marketbot/internal/bus"
	"marketbot/internal/workflow"
)

// RegisterDefaults wires the stock handler set onto the dispatcher.
// Registration order is invocation order within each event kind.
func RegisterDefaults(d *bus.Dispatcher, dw *workflow.DeliveryWorkflow) {
	d.On(bus.KindNewMessage, "log_message", LogMessage)
	d.On(bus.KindNewMessage, "auto_response", AutoResponse)
	d.On(bus.KindNewMessage, "command_notification", CommandNotification)

	d.On(bus.KindNewOrder, "new_order_notification", NewOrderNotification)
	d.On(bus.KindNewOrder, "deliver_order", DeliverOrder(dw))

	d.On(bus.KindDelivery, "delivery_notification", DeliveryNotification)

	d.On(bus.KindOrdersUpdate, "restore_listings", RestoreListings)

	d.On(bus.KindRaise, "raise_notification", RaiseNotification)
}
