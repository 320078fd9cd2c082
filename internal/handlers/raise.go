package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"marketbot/internal/bus"
)

// RaiseNotification announces a completed category raise.
func RaiseNotification(ctx context.Context, app *bus.Context, ev bus.Event) error {
	if !app.Cfg.Notifications.Enabled || !app.Cfg.Notifications.Raise {
		return nil
	}
	r := ev.Raise

	quoted := make([]string, len(r.CategoryNames))
	for i, name := range r.CategoryNames {
		quoted[i] = strconv.Quote(name)
	}
	app.Notifier.Notify(fmt.Sprintf(
		"Raised categories: %s (game %d).\nNext attempt in %s.",
		strings.Join(quoted, ", "), r.GameID, formatWait(r.Wait),
	))
	return nil
}

// formatWait renders a duration in whole hours, minutes and seconds.
func formatWait(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	d = d.Round(time.Second)
	var parts []string
	if h := d / time.Hour; h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
		d -= m * time.Minute
	}
	if s := d / time.Second; s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
