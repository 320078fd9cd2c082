package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketbot/internal/bus"
	"marketbot/internal/config"
	"marketbot/internal/domain"
	"marketbot/internal/handlers"
	"marketbot/internal/inventory"
	"marketbot/internal/marketplace"
	"marketbot/internal/notify"
	"marketbot/internal/runner"
	"marketbot/internal/workflow"

	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot (poller, raise scheduler, handlers)",
		Long:  "Starts the marketplace poller and the raise scheduler, with all enabled handlers and notification sinks. Press Ctrl+C to stop.",
		RunE:  runDaemon,
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger = buildLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := inventory.NewStore(config.ExpandPath(cfg.Inventory.DBPath), logger)
	if err != nil {
		return fmt.Errorf("inventory store: %w", err)
	}
	defer store.Close()

	var rules []domain.DeliveryRule
	if cfg.AutoDelivery.Enabled {
		rules, err = workflow.LoadRules(config.ExpandPath(cfg.AutoDelivery.RulesPath), logger)
		if err != nil {
			return fmt.Errorf("delivery rules: %w", err)
		}
	}

	bridge := notify.NewBridge(buildSinks(cfg), logger)
	defer bridge.Close()

	client := marketplace.NewClient(cfg.Marketplace, logger)
	watcher := marketplace.NewUpdateWatcher(client)

	dispatcher := bus.NewDispatcher(logger)
	app := &bus.Context{
		Cfg:        cfg,
		Client:     client,
		Rules:      rules,
		Inventory:  store,
		Notifier:   bridge,
		Dispatcher: dispatcher,
		Logger:     logger,
		Sent:       watcher.NoteSent,
	}

	handlers.RegisterDefaults(dispatcher, workflow.NewDeliveryWorkflow(client, logger))

	dispatcher.Emit(ctx, app, bus.Event{Kind: bus.KindInit})

	poller := runner.NewPoller(watcher,
		time.Duration(cfg.Marketplace.PollIntervalS)*time.Second, logger)
	go poller.Run(ctx, app)

	if cfg.Raise.Enabled {
		scheduler := runner.NewRaiseScheduler(app, workflow.NewRaiseWorkflow(client, logger))
		go scheduler.Run(ctx, app)
	}

	dispatcher.Emit(ctx, app, bus.Event{Kind: bus.KindStart})
	logger.Info("marketbot started", "version", version)

	<-ctx.Done()
	logger.Info("shutting down...")

	// The loops stop with ctx; give pending notifications a moment to drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dispatcher.Emit(shutdownCtx, app, bus.Event{Kind: bus.KindStop})

	logger.Info("shutdown complete")
	return nil
}

// buildLogger applies the configured level and optional log file.
func buildLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.General.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	out := os.Stderr
	if cfg.General.LogFile != "" {
		f, err := os.OpenFile(config.ExpandPath(cfg.General.LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			out = f
		}
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// buildSinks assembles the enabled notification sinks.
func buildSinks(cfg *config.Config) []domain.NotificationSink {
	var sinks []domain.NotificationSink

	if cfg.Telegram.Enabled && cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Error("telegram sink unavailable", "err", err)
		} else {
			sinks = append(sinks, tg)
		}
	}
	if cfg.Discord.Enabled && cfg.Discord.Token != "" {
		dc, err := notify.NewDiscord(cfg.Discord.Token, cfg.Discord.ChannelID, logger)
		if err != nil {
			logger.Error("discord sink unavailable", "err", err)
		} else {
			sinks = append(sinks, dc)
		}
	}
	if cfg.Slack.Enabled && cfg.Slack.BotToken != "" {
		sinks = append(sinks, notify.NewSlack(cfg.Slack.BotToken, cfg.Slack.Channel, logger))
	}

	if len(sinks) == 0 {
		logger.Info("no notification sinks enabled")
	}
	return sinks
}
