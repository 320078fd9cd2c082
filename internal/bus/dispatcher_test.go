package bus

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"marketbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestDispatcher_InvokesInRegistrationOrder(t *testing.T) {
	d := NewDispatcher(testLogger())

	var calls []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		d.On(KindNewMessage, name, func(ctx context.Context, app *Context, ev Event) error {
			calls = append(calls, name)
			return nil
		})
	}

	d.Emit(context.Background(), nil, NewMessageEvent(domain.MessageEvent{Text: "hi"}))

	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	for i, want := range []string{"first", "second", "third"} {
		if calls[i] != want {
			t.Errorf("call %d: expected %s, got %s", i, want, calls[i])
		}
	}
}

func TestDispatcher_ErrorDoesNotStopSiblings(t *testing.T) {
	d := NewDispatcher(testLogger())

	var calls []string
	d.On(KindNewOrder, "fails", func(ctx context.Context, app *Context, ev Event) error {
		calls = append(calls, "fails")
		return errors.New("boom")
	})
	d.On(KindNewOrder, "runs", func(ctx context.Context, app *Context, ev Event) error {
		calls = append(calls, "runs")
		return nil
	})

	d.Emit(context.Background(), nil, NewOrderEvent(domain.Order{ID: "A-1"}))

	if len(calls) != 2 || calls[1] != "runs" {
		t.Fatalf("expected both handlers to run, got %v", calls)
	}
}

func TestDispatcher_PanicDoesNotStopSiblings(t *testing.T) {
	d := NewDispatcher(testLogger())

	var ran bool
	d.On(KindRaise, "panics", func(ctx context.Context, app *Context, ev Event) error {
		panic("handler bug")
	})
	d.On(KindRaise, "survivor", func(ctx context.Context, app *Context, ev Event) error {
		ran = true
		return nil
	})

	d.Emit(context.Background(), nil, RaiseEvent(9, []string{"Gold"}, 0))

	if !ran {
		t.Fatal("handler after a panicking handler did not run")
	}
}

func TestDispatcher_ExactlyOncePerEmit(t *testing.T) {
	d := NewDispatcher(testLogger())

	count := 0
	d.On(KindOrdersUpdate, "counter", func(ctx context.Context, app *Context, ev Event) error {
		count++
		return nil
	})

	ev := OrdersUpdateEvent(domain.OrderEvent{})
	d.Emit(context.Background(), nil, ev)
	d.Emit(context.Background(), nil, ev)

	if count != 2 {
		t.Errorf("expected 2 invocations across 2 emits, got %d", count)
	}
}

func TestDispatcher_UnregisteredKindIsNoop(t *testing.T) {
	d := NewDispatcher(testLogger())
	// Must not panic or block.
	d.Emit(context.Background(), nil, Event{Kind: KindStop})
}

func TestDispatcher_SiblingsObservePriorSideEffects(t *testing.T) {
	d := NewDispatcher(testLogger())

	shared := map[string]string{}
	d.On(KindNewMessage, "writer", func(ctx context.Context, app *Context, ev Event) error {
		shared["k"] = "written"
		return nil
	})
	var got string
	d.On(KindNewMessage, "reader", func(ctx context.Context, app *Context, ev Event) error {
		got = shared["k"]
		return nil
	})

	d.Emit(context.Background(), nil, NewMessageEvent(domain.MessageEvent{}))

	if got != "written" {
		t.Errorf("reader did not observe writer's state: %q", got)
	}
}

func TestDispatcher_ExtraArgsTolerated(t *testing.T) {
	d := NewDispatcher(testLogger())

	var seen int
	d.On(KindDelivery, "ignores-extra", func(ctx context.Context, app *Context, ev Event) error {
		seen = len(ev.Extra)
		return nil
	})

	ev := DeliveryEvent(domain.Order{ID: "B-2"}, "text", false)
	ev.Extra = []any{"future", 42}
	d.Emit(context.Background(), nil, ev)

	if seen != 2 {
		t.Errorf("extra args not carried: %d", seen)
	}
}
