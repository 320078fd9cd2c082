package notify

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"marketbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type recordingSink struct {
	name  string
	err   error
	block chan struct{}

	mu   sync.Mutex
	sent []string
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Send(ctx context.Context, text string) error {
	if r.block != nil {
		<-r.block
	}
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	r.sent = append(r.sent, text)
	r.mu.Unlock()
	return nil
}

func (r *recordingSink) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

func TestBridgeDeliversToAllSinks(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	bridge := NewBridge([]domain.NotificationSink{a, b}, testLogger())

	bridge.Notify("new order")
	bridge.Notify("delivered")
	bridge.Close()

	for _, sink := range []*recordingSink{a, b} {
		got := sink.messages()
		if len(got) != 2 || got[0] != "new order" || got[1] != "delivered" {
			t.Errorf("sink %s got %v", sink.name, got)
		}
	}
}

func TestBridgeSinkFailureDoesNotStopOthers(t *testing.T) {
	bad := &recordingSink{name: "bad", err: errors.New("down")}
	good := &recordingSink{name: "good"}
	bridge := NewBridge([]domain.NotificationSink{bad, good}, testLogger())

	bridge.Notify("hello")
	bridge.Close()

	if got := good.messages(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("healthy sink got %v", got)
	}
}

func TestBridgeNotifyNeverBlocks(t *testing.T) {
	blocked := &recordingSink{name: "slow", block: make(chan struct{})}
	bridge := NewBridge([]domain.NotificationSink{blocked}, testLogger())

	done := make(chan struct{})
	go func() {
		// Well past the queue capacity; extras must be dropped, not queued.
		for i := 0; i < queueSize*3; i++ {
			bridge.Notify("spam")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	close(blocked.block)
	bridge.Close()
}

func TestBridgeIgnoresEmptyText(t *testing.T) {
	sink := &recordingSink{name: "a"}
	bridge := NewBridge([]domain.NotificationSink{sink}, testLogger())

	bridge.Notify("")
	bridge.Close()

	if got := sink.messages(); len(got) != 0 {
		t.Errorf("empty text must be dropped, got %v", got)
	}
}

func TestBridgeCloseIsIdempotent(t *testing.T) {
	bridge := NewBridge(nil, testLogger())
	bridge.Close()
	bridge.Close()
}
