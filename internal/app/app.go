// Package app holds the startup sequence shared by every binary under cmd/.
package app

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/eventhub/internal/config"
	"github.com/joshua-takyi/eventhub/internal/container"
)

// Bootstrap loads the environment, validates the credentials the job needs, connects
// storage and checks it with a one-row probe. Any failure is logged and exits with status 1
// before the job does any work.
func Bootstrap(ctx context.Context, name string, needs ...config.Need) *container.Container {
	LoadEnvFiles(".env.local", ".env")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := SetupLogger(cfg).With("job", name)
	if err := cfg.Require(append([]config.Need{config.NeedStorage}, needs...)...); err != nil {
		logger.Error("Missing configuration", "error", err)
		os.Exit(1)
	}

	c, err := container.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	if err := c.CheckConnection(ctx); err != nil {
		logger.Error("Connection check failed", "error", err)
		c.Close()
		os.Exit(1)
	}
	logger.Info("Connection check passed", "backend", cfg.StorageBackend)
	return c
}

// LoadEnvFiles reads each file on its own so a missing one does not hide the rest. Earlier
// files win because godotenv never overrides a variable that is already set.
func LoadEnvFiles(files ...string) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Failed to read env file", "file", f, "error", err)
		}
	}
}

func SetupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	return slog.New(handler)
}

// Fail logs err and exits with status 1.
func Fail(c *container.Container, msg string, err error) {
	c.Logger.Error(msg, "error", err)
	c.Close()
	os.Exit(1)
}
