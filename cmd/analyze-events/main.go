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

	c := app.Bootstrap(ctx, "analyze-events", config.NeedDurableStorage, config.NeedOpenAI)
	defer c.Close()

	report, err := c.AnalysisService.AnalyzePending(ctx)
	if err != nil {
		app.Fail(c, "Event analysis aborted", err)
	}
	c.Logger.Info("Done", "analyzed", report.Analyzed, "failed", report.Failed, "no_match", report.NoMatch)
}
