package workflow

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"marketbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type sentMessage struct {
	Channel int64
	Text    string
}

// fakeMarketplace is an in-memory MarketplaceClient for workflow tests.
type fakeMarketplace struct {
	raiseResp  domain.RaiseResponse
	raiseErr   error
	submitResp domain.RaiseResponse
	submitErr  error

	channel    int64
	channelErr error
	sendErr    error

	raiseCalls   int
	submittedIDs []int64
	sent         []sentMessage
	sendCalls    int
}

func (f *fakeMarketplace) SendMessage(ctx context.Context, channelID int64, text string) error {
	f.sendCalls++
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{Channel: channelID, Text: text})
	return nil
}

func (f *fakeMarketplace) ResolveChannelForUser(ctx context.Context, username string) (int64, error) {
	if f.channelErr != nil {
		return 0, f.channelErr
	}
	return f.channel, nil
}

func (f *fakeMarketplace) RequestCategoryRaise(ctx context.Context, cat domain.Category) (domain.RaiseResponse, error) {
	f.raiseCalls++
	if f.raiseErr != nil {
		return domain.RaiseResponse{}, f.raiseErr
	}
	return f.raiseResp, nil
}

func (f *fakeMarketplace) SubmitCategoryRaise(ctx context.Context, cat domain.Category, ids []int64) (domain.RaiseResponse, error) {
	f.submittedIDs = append([]int64(nil), ids...)
	if f.submitErr != nil {
		return domain.RaiseResponse{}, f.submitErr
	}
	return f.submitResp, nil
}

func (f *fakeMarketplace) ResolveGameID(ctx context.Context, cat domain.Category) (int64, error) {
	return cat.GameID, nil
}

func (f *fakeMarketplace) ListAccountListings(ctx context.Context) ([]domain.ListingRef, error) {
	return nil, nil
}

func (f *fakeMarketplace) SetListingActive(ctx context.Context, listingID, gameID int64, active bool) error {
	return nil
}

// fakeInventory is a slice-backed InventorySource.
type fakeInventory struct {
	items     []string
	pushedOut []string
}

func (f *fakeInventory) PopOne(ctx context.Context) (string, error) {
	if len(f.items) == 0 {
		return "", domain.ErrInventoryEmpty
	}
	item := f.items[0]
	f.items = f.items[1:]
	return item, nil
}

func (f *fakeInventory) PushBack(ctx context.Context, item string) error {
	f.items = append(f.items, item)
	f.pushedOut = append(f.pushedOut, item)
	return nil
}

func (f *fakeInventory) Count(ctx context.Context) (int, error) {
	return len(f.items), nil
}

type fakeResolver map[string]*fakeInventory

func (f fakeResolver) Source(name string) (domain.InventorySource, bool) {
	src, ok := f[name]
	return src, ok
}

func requireStatus(t *testing.T, got domain.DeliveryOutcome, want domain.DeliveryStatus) {
	t.Helper()
	if got.Status != want {
		t.Fatalf("expected %s outcome, got %s (%q)", want, got.Status, got.Text)
	}
}
