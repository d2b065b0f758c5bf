package main

import (
	"context"

	"github.com/joshua-takyi/eventhub/internal/app"
	"github.com/joshua-takyi/eventhub/internal/config"
)

func main() {
	ctx := context.Background()
	c := app.Bootstrap(ctx, "sync-organizations", config.NeedDurableStorage)
	defer c.Close()

	roster, err := config.LoadRoster(c.Config.OrganizationsFile)
	if err != nil {
		app.Fail(c, "Failed to load roster", err)
	}
	if _, err := c.OrganizationService.SyncRoster(ctx, roster); err != nil {
		app.Fail(c, "Organizations sync failed", err)
	}
}
