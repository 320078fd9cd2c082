package domain

import "context"

// DeliveryRule maps a listing to its scripted delivery. Rules are matched
// against order titles by substring, first match wins in file order.
type DeliveryRule struct {
	Match     string `yaml:"match"`
	Response  string `yaml:"response"`
	Inventory string `yaml:"inventory,omitempty"`
}

type DeliveryStatus int

const (
	// DeliveryNoRule: the order matched no configured rule. Not an error;
	// logged locally and never propagated.
	DeliveryNoRule DeliveryStatus = iota
	DeliverySuccess
	DeliveryFailure
)

func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryNoRule:
		return "no_rule"
	case DeliverySuccess:
		return "success"
	case DeliveryFailure:
		return "failure"
	}
	return "unknown"
}

// DeliveryOutcome is the terminal result of delivering one order.
// Text holds the delivered payload on success and the failure reason
// otherwise. Remaining is -1 when the rule tracks no inventory.
type DeliveryOutcome struct {
	Status    DeliveryStatus
	Text      string
	Remaining int
}

// InventorySource hands out product units for delivery. PushBack is the
// compensating write for a unit that was popped but never reached the buyer;
// implementations must keep pop/push-back atomic with respect to concurrent
// deliveries of the same listing.
type InventorySource interface {
	PopOne(ctx context.Context) (string, error) // ErrInventoryEmpty when exhausted
	PushBack(ctx context.Context, item string) error
	Count(ctx context.Context) (int, error)
}

// InventoryResolver maps a rule's inventory name to its source.
type InventoryResolver interface {
	Source(name string) (InventorySource, bool)
}

// NotificationSink delivers rendered notification text somewhere external.
// Sends are best-effort; callers ignore errors beyond logging.
type NotificationSink interface {
	Name() string
	Send(ctx context.Context, text string) error
}
