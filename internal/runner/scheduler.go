// Package runner owns the long-lived loops: the raise scheduler and the
// marketplace update poller. Both emit events through the dispatcher and
// stop when their context is cancelled.
package runner

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"marketbot/internal/bus"
	"marketbot/internal/domain"
	"marketbot/internal/workflow"
)

const resolveRetryWait = 10 * time.Second

type raiseTask struct {
	cat     domain.Category
	nextRun time.Time
}

// RaiseScheduler keeps every configured category raised. Each category
// carries its own next-run time, fed by the workflow's wait hints, so a
// category on cooldown does not hold back the others.
type RaiseScheduler struct {
	wf      *workflow.RaiseWorkflow
	exclude map[int64]struct{}
	logger  *slog.Logger

	mu    sync.Mutex
	tasks []*raiseTask

	// Tick is the poll resolution; tests shorten it.
	Tick time.Duration
}

func NewRaiseScheduler(app *bus.Context, wf *workflow.RaiseWorkflow) *RaiseScheduler {
	s := &RaiseScheduler{
		wf:      wf,
		exclude: make(map[int64]struct{}),
		logger:  app.Logger,
		Tick:    time.Second,
	}
	for _, raw := range app.Cfg.Raise.Exclude {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			s.exclude[id] = struct{}{}
		}
	}
	for _, cc := range app.Cfg.Raise.Categories {
		ct := domain.CategoryLot
		if cc.Type == "currency" {
			ct = domain.CategoryCurrency
		}
		s.tasks = append(s.tasks, &raiseTask{
			cat: domain.Category{ID: cc.ID, Title: cc.Title, Type: ct},
		})
	}
	return s
}

// Run drives the scheduler until ctx is done. Every due category is raised
// in turn; the zero initial next-run makes the first pass immediate.
func (s *RaiseScheduler) Run(ctx context.Context, app *bus.Context) {
	if len(s.tasks) == 0 {
		s.logger.Info("no raise categories configured")
		return
	}
	s.logger.Info("raise scheduler started", "categories", len(s.tasks))

	ticker := time.NewTicker(s.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("raise scheduler stopping")
			return
		case now := <-ticker.C:
			s.runDue(ctx, app, now)
		}
	}
}

func (s *RaiseScheduler) runDue(ctx context.Context, app *bus.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, task := range s.tasks {
		if now.Before(task.nextRun) {
			continue
		}
		s.runOne(ctx, app, task, now)
	}
}

func (s *RaiseScheduler) runOne(ctx context.Context, app *bus.Context, task *raiseTask, now time.Time) {
	if task.cat.GameID == 0 {
		gameID, err := app.Client.ResolveGameID(ctx, task.cat)
		if err != nil {
			s.logger.Warn("cannot resolve game id", "category", task.cat.ID, "err", err)
			task.nextRun = now.Add(resolveRetryWait)
			return
		}
		task.cat.GameID = gameID
	}

	out := s.wf.Raise(ctx, task.cat, s.exclude)
	task.nextRun = now.Add(out.Wait)

	if out.Complete {
		s.logger.Info("categories raised",
			"game", task.cat.GameID, "names", out.RaisedNames, "next", out.Wait)
		app.Dispatcher.Emit(ctx, app, bus.RaiseEvent(task.cat.GameID, out.RaisedNames, out.Wait))
	} else {
		s.logger.Info("raise deferred", "category", task.cat.ID, "retry_in", out.Wait)
	}
}
