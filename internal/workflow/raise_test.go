package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketbot/internal/domain"
)

var raiseCat = domain.Category{ID: 100, GameID: 41, Title: "Gold"}

func TestRaise_CooldownCarriesParsedWait(t *testing.T) {
	client := &fakeMarketplace{
		raiseResp: domain.RaiseResponse{Kind: domain.RaiseCooldown, Wait: 45 * time.Second},
	}
	w := NewRaiseWorkflow(client, testLogger())

	out := w.Raise(context.Background(), raiseCat, nil)

	if out.Complete {
		t.Error("cooldown must not be complete")
	}
	if out.Wait != 45*time.Second {
		t.Errorf("expected wait 45s, got %s", out.Wait)
	}
	if len(out.RaisedNames) != 0 {
		t.Errorf("cooldown must raise nothing, got %v", out.RaisedNames)
	}
}

func TestRaise_UnknownErrorUsesFallbackWait(t *testing.T) {
	client := &fakeMarketplace{
		raiseResp: domain.RaiseResponse{Kind: domain.RaiseError, Message: "bad request"},
	}
	w := NewRaiseWorkflow(client, testLogger())

	out := w.Raise(context.Background(), raiseCat, nil)

	if out.Complete || out.Wait != 10*time.Second {
		t.Errorf("expected incomplete with 10s wait, got complete=%v wait=%s", out.Complete, out.Wait)
	}
}

func TestRaise_TransportErrorBecomesOutcome(t *testing.T) {
	client := &fakeMarketplace{raiseErr: &domain.TransportError{Op: "request raise", Status: 502}}
	w := NewRaiseWorkflow(client, testLogger())

	out := w.Raise(context.Background(), raiseCat, nil)

	if out.Complete || out.Wait != 10*time.Second {
		t.Errorf("expected incomplete with 10s wait, got complete=%v wait=%s", out.Complete, out.Wait)
	}
}

func TestRaise_SingleCategoryAutoRaise(t *testing.T) {
	client := &fakeMarketplace{
		raiseResp: domain.RaiseResponse{Kind: domain.RaiseAutoRaised},
	}
	w := NewRaiseWorkflow(client, testLogger())

	out := w.Raise(context.Background(), raiseCat, nil)

	if !out.Complete {
		t.Fatal("auto-raise must be complete")
	}
	if out.Wait != time.Hour {
		t.Errorf("expected 1h wait, got %s", out.Wait)
	}
	if len(out.RaisedNames) != 1 || out.RaisedNames[0] != "Gold" {
		t.Errorf("expected the category's own title, got %v", out.RaisedNames)
	}
}

func TestRaise_ModalSubmitsAllButExcluded(t *testing.T) {
	client := &fakeMarketplace{
		raiseResp: domain.RaiseResponse{
			Kind: domain.RaiseModal,
			Entries: []domain.ModalEntry{
				{ID: 1, Name: "Accounts"},
				{ID: 2, Name: "Top Up"},
				{ID: 3, Name: "Items"},
				{ID: 4, Name: "Boosting"},
			},
		},
		submitResp: domain.RaiseResponse{Kind: domain.RaiseAutoRaised},
	}
	w := NewRaiseWorkflow(client, testLogger())

	exclude := map[int64]struct{}{2: {}, 4: {}}
	out := w.Raise(context.Background(), raiseCat, exclude)

	if !out.Complete {
		t.Fatal("modal submission must complete")
	}
	if len(client.submittedIDs) != 2 || client.submittedIDs[0] != 1 || client.submittedIDs[1] != 3 {
		t.Errorf("expected ids [1 3], got %v", client.submittedIDs)
	}
	if len(out.RaisedNames) != 2 || out.RaisedNames[0] != "Accounts" || out.RaisedNames[1] != "Items" {
		t.Errorf("expected names of submitted categories, got %v", out.RaisedNames)
	}
}

func TestRaise_ModalAllExcludedDoesNotSubmit(t *testing.T) {
	client := &fakeMarketplace{
		raiseResp: domain.RaiseResponse{
			Kind:    domain.RaiseModal,
			Entries: []domain.ModalEntry{{ID: 1, Name: "Only"}},
		},
	}
	w := NewRaiseWorkflow(client, testLogger())

	out := w.Raise(context.Background(), raiseCat, map[int64]struct{}{1: {}})

	if out.Complete {
		t.Error("nothing was raised, outcome must be incomplete")
	}
	if client.submittedIDs != nil {
		t.Errorf("must not submit an empty selection, got %v", client.submittedIDs)
	}
}

func TestRaise_ModalSubmissionRejected(t *testing.T) {
	client := &fakeMarketplace{
		raiseResp: domain.RaiseResponse{
			Kind:    domain.RaiseModal,
			Entries: []domain.ModalEntry{{ID: 1, Name: "Accounts"}},
		},
		submitResp: domain.RaiseResponse{Kind: domain.RaiseError, Message: "nope"},
	}
	w := NewRaiseWorkflow(client, testLogger())

	out := w.Raise(context.Background(), raiseCat, nil)

	if out.Complete || out.Wait != 10*time.Second {
		t.Errorf("expected incomplete with 10s wait, got complete=%v wait=%s", out.Complete, out.Wait)
	}
	if len(out.RaisedNames) != 0 {
		t.Errorf("rejected submission must raise nothing, got %v", out.RaisedNames)
	}
}

func TestRaise_UnresolvedGameIDDoesNotRequest(t *testing.T) {
	client := &fakeMarketplace{}
	w := NewRaiseWorkflow(client, testLogger())

	out := w.Raise(context.Background(), domain.Category{ID: 100, Title: "Gold"}, nil)

	if out.Complete {
		t.Error("unresolved category must not complete")
	}
	if client.raiseCalls != 0 {
		t.Errorf("no request should be issued, got %d", client.raiseCalls)
	}
}

func TestRaise_RaisedNamesOnlyWhenComplete(t *testing.T) {
	// Invariant check across every terminal outcome produced above.
	cases := []domain.RaiseResponse{
		{Kind: domain.RaiseCooldown, Wait: time.Minute},
		{Kind: domain.RaiseError, Message: "x"},
		{Kind: domain.RaiseAutoRaised},
	}
	for _, resp := range cases {
		client := &fakeMarketplace{raiseResp: resp}
		out := NewRaiseWorkflow(client, testLogger()).Raise(context.Background(), raiseCat, nil)
		if out.Complete != (len(out.RaisedNames) > 0) {
			t.Errorf("%s: complete=%v but raised=%v", resp.Kind, out.Complete, out.RaisedNames)
		}
	}
}

func TestRaise_SubmitTransportError(t *testing.T) {
	client := &fakeMarketplace{
		raiseResp: domain.RaiseResponse{
			Kind:    domain.RaiseModal,
			Entries: []domain.ModalEntry{{ID: 1, Name: "Accounts"}},
		},
		submitErr: errors.New("connection reset"),
	}
	w := NewRaiseWorkflow(client, testLogger())

	out := w.Raise(context.Background(), raiseCat, nil)

	if out.Complete || out.Wait != 10*time.Second {
		t.Errorf("expected incomplete with 10s wait, got complete=%v wait=%s", out.Complete, out.Wait)
	}
}
