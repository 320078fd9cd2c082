// Package handlers holds the event handlers registered on the dispatcher:
// message logging, scripted replies, order delivery, listing restore, and
// the notification fan-out.
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketbot/internal/bus"
	"marketbot/internal/config"
	"marketbot/internal/workflow"
)

const responseSendAttempts = 3

// responseSendDelay is a var so tests can zero it.
var responseSendDelay = time.Second

// LogMessage logs every inbound chat message line by line.
func LogMessage(ctx context.Context, app *bus.Context, ev bus.Event) error {
	msg := ev.Message
	app.Logger.Info("new message", "sender", msg.SenderUsername, "channel", msg.ChannelID)
	for _, line := range strings.Split(msg.Text, "\n") {
		app.Logger.Info("  " + line)
	}
	return nil
}

// lookupCommand matches a message against the scripted commands,
// case-insensitively and ignoring surrounding whitespace.
func lookupCommand(cfg *config.Config, text string) (config.CommandConfig, bool) {
	key := strings.ToLower(strings.TrimSpace(text))
	for name, cmd := range cfg.AutoResponse.Commands {
		if strings.ToLower(strings.TrimSpace(name)) == key {
			return cmd, true
		}
	}
	return config.CommandConfig{}, false
}

// AutoResponse replies to scripted commands. The reply is retried a few
// times with a short pause; a success is reported to the poller so the
// bot's own message is not mistaken for new input.
func AutoResponse(ctx context.Context, app *bus.Context, ev bus.Event) error {
	if !app.Cfg.AutoResponse.Enabled {
		return nil
	}
	msg := ev.Message
	cmd, ok := lookupCommand(app.Cfg, msg.Text)
	if !ok {
		return nil
	}

	app.Logger.Info("command received", "command", strings.TrimSpace(msg.Text), "sender", msg.SenderUsername)
	text := workflow.RenderMessage(cmd.Response, *msg)

	var lastErr error
	for attempt := 1; attempt <= responseSendAttempts; attempt++ {
		lastErr = app.Client.SendMessage(ctx, msg.ChannelID, text)
		if lastErr == nil {
			if app.Sent != nil {
				app.Sent(msg.ChannelID, text)
			}
			app.Logger.Info("replied to command", "sender", msg.SenderUsername)
			return nil
		}
		app.Logger.Warn("command reply failed", "sender", msg.SenderUsername, "attempt", attempt, "err", lastErr)
		if attempt < responseSendAttempts {
			time.Sleep(responseSendDelay)
		}
	}
	return fmt.Errorf("reply to %s: %w", msg.SenderUsername, lastErr)
}

// CommandNotification forwards a scripted-command hit to the notification
// sinks when both the global and the per-command flags allow it.
func CommandNotification(ctx context.Context, app *bus.Context, ev bus.Event) error {
	if !app.Cfg.Notifications.Enabled || !app.Cfg.Notifications.Command {
		return nil
	}
	msg := ev.Message
	cmd, ok := lookupCommand(app.Cfg, msg.Text)
	if !ok || !cmd.Notify {
		return nil
	}

	text := cmd.NotifyText
	if text == "" {
		text = fmt.Sprintf("User %s sent the command %q.", msg.SenderUsername, strings.TrimSpace(msg.Text))
	} else {
		text = workflow.RenderMessage(text, *msg)
	}
	app.Notifier.Notify(text)
	return nil
}
