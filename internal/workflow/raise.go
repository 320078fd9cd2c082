package workflow

import (
	"context"
	"log/slog"
	"time"

	"marketbot/internal/domain"
)

const (
	// errorRetryWait is the fallback hint when a raise fails for any reason
	// other than an explicit cooldown.
	errorRetryWait = 10 * time.Second
	// raisedAgainWait is the hint after a successful raise; the marketplace
	// allows one raise per category per hour.
	raisedAgainWait = time.Hour
)

// RaiseWorkflow drives the multi-step category raise protocol. Every path
// returns an outcome value; transport errors never escape.
type RaiseWorkflow struct {
	client domain.MarketplaceClient
	logger *slog.Logger
}

func NewRaiseWorkflow(client domain.MarketplaceClient, logger *slog.Logger) *RaiseWorkflow {
	return &RaiseWorkflow{client: client, logger: logger}
}

// Raise attempts to raise cat together with its sibling categories, skipping
// ids in exclude. Requires cat.GameID to be resolved. The outcome's Wait is
// the earliest time the caller may try this category again.
func (w *RaiseWorkflow) Raise(ctx context.Context, cat domain.Category, exclude map[int64]struct{}) domain.RaiseOutcome {
	if cat.GameID == 0 {
		w.logger.Error("raise attempted with unresolved game id", "category", cat.ID)
		return domain.RaiseOutcome{Complete: false, Wait: errorRetryWait}
	}

	resp, err := w.client.RequestCategoryRaise(ctx, cat)
	if err != nil {
		w.logger.Warn("raise request failed", "category", cat.ID, "err", err)
		return domain.RaiseOutcome{Complete: false, Wait: errorRetryWait}
	}

	switch resp.Kind {
	case domain.RaiseCooldown:
		return domain.RaiseOutcome{Complete: false, Wait: resp.Wait, Response: resp}

	case domain.RaiseError:
		w.logger.Warn("marketplace rejected raise", "category", cat.ID, "msg", resp.Message)
		return domain.RaiseOutcome{Complete: false, Wait: errorRetryWait, Response: resp}

	case domain.RaiseAutoRaised:
		// Only one category belongs to the game; the marketplace raised it
		// without a selection step.
		return domain.RaiseOutcome{
			Complete:    true,
			Wait:        raisedAgainWait,
			RaisedNames: []string{cat.Title},
			Response:    resp,
		}

	case domain.RaiseModal:
		return w.submitModal(ctx, cat, resp, exclude)
	}

	w.logger.Error("unclassifiable raise response", "category", cat.ID)
	return domain.RaiseOutcome{Complete: false, Wait: errorRetryWait, Response: resp}
}

func (w *RaiseWorkflow) submitModal(ctx context.Context, cat domain.Category, modal domain.RaiseResponse, exclude map[int64]struct{}) domain.RaiseOutcome {
	var ids []int64
	var names []string
	for _, entry := range modal.Entries {
		if _, skip := exclude[entry.ID]; skip {
			continue
		}
		ids = append(ids, entry.ID)
		names = append(names, entry.Name)
	}

	if len(ids) == 0 {
		w.logger.Warn("every modal category is excluded, nothing to raise", "category", cat.ID)
		return domain.RaiseOutcome{Complete: false, Wait: errorRetryWait, Response: modal}
	}

	resp, err := w.client.SubmitCategoryRaise(ctx, cat, ids)
	if err != nil {
		w.logger.Warn("raise submission failed", "category", cat.ID, "err", err)
		return domain.RaiseOutcome{Complete: false, Wait: errorRetryWait}
	}

	if resp.Kind == domain.RaiseCooldown || resp.Kind == domain.RaiseError {
		w.logger.Warn("marketplace rejected raise submission", "category", cat.ID, "msg", resp.Message)
		return domain.RaiseOutcome{Complete: false, Wait: errorRetryWait, Response: resp}
	}

	return domain.RaiseOutcome{
		Complete:    true,
		Wait:        raisedAgainWait,
		RaisedNames: names,
		Response:    resp,
	}
}
