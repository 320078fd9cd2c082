package domain

import (
	"context"
	"encoding/json"
	"time"
)

// RaiseResponseKind classifies a raw raise response. All the fragile
// text-matching against marketplace replies lives behind this classification;
// consumers only ever switch on the kind.
type RaiseResponseKind int

const (
	// RaiseCooldown: the marketplace rejected the raise and told us how long
	// to wait before trying again.
	RaiseCooldown RaiseResponseKind = iota
	// RaiseError: the marketplace reported an error we do not recognize.
	RaiseError
	// RaiseAutoRaised: the account has a single category for the game, so the
	// marketplace raised it immediately without a selection step. The
	// marketplace signals this both as an explicit false error flag and as a
	// missing error key; both map here.
	RaiseAutoRaised
	// RaiseModal: the marketplace wants a second request selecting which
	// categories to raise together.
	RaiseModal
)

func (k RaiseResponseKind) String() string {
	switch k {
	case RaiseCooldown:
		return "cooldown"
	case RaiseError:
		return "error"
	case RaiseAutoRaised:
		return "auto_raised"
	case RaiseModal:
		return "modal"
	}
	return "unknown"
}

// ModalEntry is one selectable category in a raise modal.
type ModalEntry struct {
	ID   int64
	Name string
}

// RaiseResponse is a classified marketplace reply to a raise request.
type RaiseResponse struct {
	Kind    RaiseResponseKind
	Wait    time.Duration // set for RaiseCooldown
	Message string        // set for RaiseCooldown and RaiseError
	Entries []ModalEntry  // set for RaiseModal
	Raw     json.RawMessage
}

// RaiseOutcome is the terminal result of one raise attempt.
// Wait is always a meaningful retry hint: callers must not re-raise the same
// category before it elapses. RaisedNames is non-empty only when Complete.
type RaiseOutcome struct {
	Complete    bool
	Wait        time.Duration
	RaisedNames []string
	Response    RaiseResponse
}

// MarketplaceClient is the session-authenticated surface the workflows drive.
// Implementations perform single requests with a fixed per-call timeout and no
// retries; retry policy belongs to the callers.
type MarketplaceClient interface {
	// SendMessage posts text into the conversation channelID.
	SendMessage(ctx context.Context, channelID int64, text string) error

	// ResolveChannelForUser finds the conversation with username.
	// Returns ErrNoChannel when no conversation exists yet.
	ResolveChannelForUser(ctx context.Context, username string) (int64, error)

	// RequestCategoryRaise asks to raise cat. Requires cat.GameID != 0.
	RequestCategoryRaise(ctx context.Context, cat Category) (RaiseResponse, error)

	// SubmitCategoryRaise answers a modal with the selected category ids.
	SubmitCategoryRaise(ctx context.Context, cat Category, ids []int64) (RaiseResponse, error)

	// ResolveGameID looks up the game a category belongs to.
	ResolveGameID(ctx context.Context, cat Category) (int64, error)

	// ListAccountListings returns the listings currently active on the account.
	ListAccountListings(ctx context.Context) ([]ListingRef, error)

	// SetListingActive flips a listing's active state.
	SetListingActive(ctx context.Context, listingID, gameID int64, active bool) error
}
