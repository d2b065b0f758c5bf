package main

import (
	"context"

	"github.com/joshua-takyi/eventhub/internal/app"
	"github.com/joshua-takyi/eventhub/internal/config"
)

func main() {
	ctx := context.Background()
	c := app.Bootstrap(ctx, "seed-interests", config.NeedDurableStorage)
	defer c.Close()

	if _, err := c.InterestService.Seed(ctx); err != nil {
		app.Fail(c, "Interest seeding failed", err)
	}
}
