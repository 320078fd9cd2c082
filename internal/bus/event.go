package bus

import (
	"time"

	"marketbot/internal/domain"
)

// Kind enumerates the event kinds handlers can register for.
type Kind int

const (
	KindNewMessage Kind = iota
	KindOrdersUpdate
	KindNewOrder
	KindDelivery
	KindRaise
	KindInit
	KindStart
	KindStop
)

func (k Kind) String() string {
	switch k {
	case KindNewMessage:
		return "new_message"
	case KindOrdersUpdate:
		return "orders_update"
	case KindNewOrder:
		return "new_order"
	case KindDelivery:
		return "delivery"
	case KindRaise:
		return "raise"
	case KindInit:
		return "init"
	case KindStart:
		return "start"
	case KindStop:
		return "stop"
	}
	return "unknown"
}

// DeliveryPayload reports the result of delivering one order. Text is the
// delivered product text, or the failure reason when Errored.
type DeliveryPayload struct {
	Order   domain.Order
	Text    string
	Errored bool
}

// RaisePayload reports a completed category raise.
type RaisePayload struct {
	GameID        int64
	CategoryNames []string
	Wait          time.Duration
}

// Event is the tagged payload handed to handlers. Exactly one payload field
// is set, matching Kind; lifecycle kinds (Init, Start, Stop) carry none.
// Extra is a forward-compatible slot for arguments added later; handlers
// that do not know about them must ignore it.
type Event struct {
	Kind     Kind
	Message  *domain.MessageEvent
	Orders   *domain.OrderEvent
	Order    *domain.Order
	Delivery *DeliveryPayload
	Raise    *RaisePayload
	Extra    []any
}

// NewMessageEvent wraps an inbound chat message.
func NewMessageEvent(msg domain.MessageEvent) Event {
	return Event{Kind: KindNewMessage, Message: &msg}
}

// NewOrderEvent wraps a newly observed order.
func NewOrderEvent(order domain.Order) Event {
	return Event{Kind: KindNewOrder, Order: &order}
}

// OrdersUpdateEvent signals that the order list changed.
func OrdersUpdateEvent(ev domain.OrderEvent) Event {
	return Event{Kind: KindOrdersUpdate, Orders: &ev}
}

// DeliveryEvent reports a delivery result to downstream handlers.
func DeliveryEvent(order domain.Order, text string, errored bool) Event {
	return Event{Kind: KindDelivery, Delivery: &DeliveryPayload{Order: order, Text: text, Errored: errored}}
}

// RaiseEvent reports a completed raise.
func RaiseEvent(gameID int64, names []string, wait time.Duration) Event {
	return Event{Kind: KindRaise, Raise: &RaisePayload{GameID: gameID, CategoryNames: names, Wait: wait}}
}
