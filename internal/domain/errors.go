package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoChannel: no conversation exists with the requested user.
	ErrNoChannel = errors.New("no conversation channel for user")

	// ErrInventoryEmpty: the inventory source has no units left.
	ErrInventoryEmpty = errors.New("inventory empty")

	// ErrEmptyMessage: refusing to send a blank chat message.
	ErrEmptyMessage = errors.New("empty message text")
)

// TransportError wraps a failed marketplace call: network failure or a
// non-2xx status. Workflows retry these a bounded number of times and then
// surface them as failure outcomes.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
