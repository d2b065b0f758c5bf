package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joshua-takyi/eventhub/internal/app"
	"github.com/joshua-takyi/eventhub/internal/config"
	"github.com/joshua-takyi/eventhub/internal/container"
	"github.com/robfig/cron/v3"
)

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// exclusive lets one wrapped job run at a time across every cron entry. A tick that finds
// another job running is skipped.
type exclusive struct {
	mu     sync.Mutex
	logger *slog.Logger
}

func (e *exclusive) wrap(name string, fn func()) func() {
	return func() {
		if !e.mu.TryLock() {
			e.logger.Info("Skipping job, another job is still running", "job", name)
			return
		}
		defer e.mu.Unlock()
		fn()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := app.Bootstrap(ctx, "scheduler", config.NeedDurableStorage, config.NeedEventbrite, config.NeedOpenAI)
	defer c.Close()

	logger := cronLogger{logger: c.Logger}
	sched := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)
	gate := &exclusive{logger: c.Logger}

	if _, err := sched.AddFunc(c.Config.SyncCron, gate.wrap("sync", func() { syncAll(ctx, c) })); err != nil {
		app.Fail(c, "Invalid SYNC_CRON", err)
	}
	if _, err := sched.AddFunc(c.Config.AnalyzeCron, gate.wrap("analyze", func() { analyze(ctx, c) })); err != nil {
		app.Fail(c, "Invalid ANALYZE_CRON", err)
	}

	c.Logger.Info("Scheduler started", "sync_cron", c.Config.SyncCron, "analyze_cron", c.Config.AnalyzeCron)
	sched.Start()

	<-ctx.Done()
	c.Logger.Info("Scheduler stopping, waiting for running jobs")
	<-sched.Stop().Done()
}

// syncAll refreshes the roster when a roster file is present, then syncs every stored
// organization's events.
func syncAll(ctx context.Context, c *container.Container) {
	if _, err := os.Stat(c.Config.OrganizationsFile); err == nil {
		roster, err := config.LoadRoster(c.Config.OrganizationsFile)
		if err != nil {
			c.Logger.Error("Failed to load roster", "error", err)
		} else if _, err := c.OrganizationService.SyncRoster(ctx, roster); err != nil {
			c.Logger.Error("Organizations sync failed", "error", err)
		}
	}

	ids, err := c.OrganizationService.OrganizerIDs(ctx)
	if err != nil {
		c.Logger.Error("Failed to load organizations", "error", err)
		return
	}
	if _, err := c.SyncService.SyncEvents(ctx, ids); err != nil {
		c.Logger.Error("Event sync aborted", "error", err)
	}
}

func analyze(ctx context.Context, c *container.Container) {
	if _, err := c.AnalysisService.AnalyzePending(ctx); err != nil {
		c.Logger.Error("Event analysis aborted", "error", err)
	}
}
