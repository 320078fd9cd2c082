package domain

import "time"

// MessageEvent is one inbound chat message observed by the poller.
// Values are immutable once produced.
type MessageEvent struct {
	ChannelID      int64
	Text           string
	SenderUsername string
	SentAt         time.Time
	Tag            string
}

// OrderEvent signals that the account's order list changed. It carries no
// payload; consumers re-sync on their own.
type OrderEvent struct {
	ObservedAt time.Time
}

type OrderStatus int

const (
	OrderOutstanding OrderStatus = iota
	OrderCompleted
	OrderRefund
)

func (s OrderStatus) String() string {
	switch s {
	case OrderOutstanding:
		return "outstanding"
	case OrderCompleted:
		return "completed"
	case OrderRefund:
		return "refund"
	}
	return "unknown"
}

// Order is a purchase on the account, as scraped from the marketplace.
type Order struct {
	ID            string
	Title         string
	Price         float64
	BuyerUsername string
	BuyerID       int64
	Status        OrderStatus
}

type CategoryType int

const (
	CategoryLot CategoryType = iota
	CategoryCurrency
)

// Category groups listings under one game. GameID is zero until resolved;
// a raise must not be attempted before resolution.
type Category struct {
	ID     int64
	GameID int64
	Title  string
	Type   CategoryType
}

// ListingRef identifies one listing owned by the account.
type ListingRef struct {
	ID     int64
	GameID int64
	Title  string
}
