package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joshua-takyi/eventhub/internal/app"
	"github.com/joshua-takyi/eventhub/internal/routes"
)

func main() {
	c := app.Bootstrap(context.Background(), "api")
	defer c.Close()
	logger := c.Logger
	logger.Info("Starting eventhub API server", "environment", c.Config.Environment)

	if c.Config.SupabaseURL != "" {
		if err := c.EnableAdminAuth(context.Background()); err != nil {
			logger.Warn("Admin routes disabled", "error", err)
		}
	}
	if c.LiveEventsService == nil {
		logger.Warn("EVENTBRITE_TOKEN not set, live events endpoint disabled")
	}

	router := routes.SetupRoutes(c)

	server := &http.Server{
		Addr:         ":" + c.Config.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", c.Config.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
