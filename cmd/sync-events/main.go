package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joshua-takyi/eventhub/internal/app"
	"github.com/joshua-takyi/eventhub/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := app.Bootstrap(ctx, "sync-events", config.NeedDurableStorage, config.NeedEventbrite)
	defer c.Close()

	ids, err := c.OrganizationService.OrganizerIDs(ctx)
	if err != nil {
		app.Fail(c, "Failed to load organizations", err)
	}
	if len(ids) == 0 {
		c.Logger.Warn("No organizations stored; run sync-organizations first")
		return
	}

	report, err := c.SyncService.SyncEvents(ctx, ids)
	if err != nil {
		app.Fail(c, "Event sync aborted", err)
	}
	c.Logger.Info("Done", "rows_upserted", report.RowsUpserted, "organizers_failed", report.OrganizersFailed)
}
