package handlers

import (
	"context"
	"fmt"

	"marketbot/internal/bus"
)

const restoreFetchAttempts = 3

// RestoreListings re-activates configured listings that have dropped off the
// account's active list, typically because their stock sold out.
func RestoreListings(ctx context.Context, app *bus.Context, ev bus.Event) error {
	if !app.Cfg.AutoRestore.Enabled || len(app.Cfg.AutoRestore.Lots) == 0 {
		return nil
	}

	app.Logger.Info("refreshing listing state")
	active := make(map[int64]struct{})
	var lastErr error
	for attempt := 1; attempt <= restoreFetchAttempts; attempt++ {
		refs, err := app.Client.ListAccountListings(ctx)
		if err != nil {
			lastErr = err
			app.Logger.Warn("cannot fetch account listings", "attempt", attempt, "err", err)
			continue
		}
		for _, ref := range refs {
			active[ref.ID] = struct{}{}
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return fmt.Errorf("fetch account listings: %w", lastErr)
	}

	for _, lot := range app.Cfg.AutoRestore.Lots {
		if _, ok := active[lot.ID]; ok {
			continue
		}
		if err := app.Client.SetListingActive(ctx, lot.ID, lot.GameID, true); err != nil {
			app.Logger.Error("cannot re-activate listing", "listing", lot.ID, "err", err)
			continue
		}
		app.Logger.Info("re-activated listing", "listing", lot.ID)
	}
	return nil
}
