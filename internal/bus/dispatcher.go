package bus

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Handler reacts to one event. Errors are logged by the dispatcher and never
// stop sibling handlers; a handler that needs to abort downstream work must
// communicate through its own side effects.
type Handler func(ctx context.Context, app *Context, ev Event) error

// Dispatcher holds ordered handler registrations per event kind and invokes
// them sequentially on the emitting goroutine. Registration order is
// invocation order. The registry is built once at startup; dispatch takes a
// read lock only, so it must not race with further On calls.
type Dispatcher struct {
	handlers map[Kind][]namedHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[Kind][]namedHandler),
		logger:   logger,
	}
}

// On appends handler to the ordered list for kind.
func (d *Dispatcher) On(kind Kind, name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], namedHandler{name: name, handler: handler})
}

// HandlerNames returns the registered handler names for kind, in invocation order.
func (d *Dispatcher) HandlerNames(kind Kind) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.handlers[kind]))
	for _, h := range d.handlers[kind] {
		names = append(names, h.name)
	}
	return names
}

// Emit invokes every handler registered for ev.Kind, in registration order.
// Each invocation is isolated: an error or panic is logged with the event
// kind, handler name, and stack, and the remaining handlers still run.
func (d *Dispatcher) Emit(ctx context.Context, app *Context, ev Event) {
	d.mu.RLock()
	handlers := d.handlers[ev.Kind]
	d.mu.RUnlock()

	for _, h := range handlers {
		if err := d.invoke(ctx, app, ev, h); err != nil {
			d.logger.Error("handler failed",
				"event", ev.Kind.String(),
				"handler", h.name,
				"err", err,
			)
		}
	}
}

func (d *Dispatcher) invoke(ctx context.Context, app *Context, ev Event, h namedHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return h.handler(ctx, app, ev)
}
