package container

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/eventhub/internal/cache"
	"github.com/joshua-takyi/eventhub/internal/classify"
	"github.com/joshua-takyi/eventhub/internal/clock"
	"github.com/joshua-takyi/eventhub/internal/config"
	"github.com/joshua-takyi/eventhub/internal/connect"
	"github.com/joshua-takyi/eventhub/internal/eventbrite"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/metrics"
	"github.com/joshua-takyi/eventhub/internal/middleware"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/services"
	"github.com/joshua-takyi/eventhub/migrations"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	Clock    clock.Clock
	Metrics  *metrics.Metrics
	Location *time.Location

	Store models.Store
	Runs  models.RunsRepo

	// Eventbrite is nil when no token is configured.
	Eventbrite *eventbrite.Client
	// Classifier is nil when no OpenAI key is configured.
	Classifier classify.Classifier
	// Tokens is set by EnableAdminAuth; admin routes are off without it.
	Tokens middleware.TokenValidator

	SyncService         *services.SyncService
	OrganizationService *services.OrganizationService
	InterestService     *services.InterestService
	AnalysisService     *services.AnalysisService
	EventService        *services.EventService
	LiveEventsService   *services.LiveEventsService
	RunsService         *services.RunsService

	closers []func()
}

// NewContainer connects the configured storage and run history backends and wires the
// services on top of them.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{}

	store, err := c.openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var runs models.RunsRepo = models.NewLogRunsRepo(logger, 50)
	if cfg.MongoDBURI != "" {
		client, err := connect.MongoDBConnect(ctx, cfg.MongoDBURI, cfg.MongoDBPassword, logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, func() { disconnectMongo(client, logger) })
		runs = models.MongodbNewRepo(client, cfg.MongoDBName)
	}

	c.wire(cfg, logger, clock.NewSystem(), store, runs)
	return c, nil
}

// NewWithStore wires services over an existing store, e.g. an in-memory one.
func NewWithStore(cfg *config.Config, logger *slog.Logger, clk clock.Clock, store models.Store, runs models.RunsRepo) *Container {
	c := &Container{}
	c.wire(cfg, logger, clk, store, runs)
	return c
}

func (c *Container) openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (models.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		logger.Warn("Using in-memory storage; data is lost on exit")
		return models.NewMemoryRepo(), nil
	case config.BackendPostgres:
		if err := migrations.Up(cfg.DatabaseURL, logger); err != nil {
			return nil, err
		}
		pool, err := connect.PostgresConnect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)
		return models.PostgresNewRepo(pool), nil
	case config.BackendSupabase:
		client, err := connect.InitSupabase(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to Supabase")
		return models.SupabaseNewRepo(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func (c *Container) wire(cfg *config.Config, logger *slog.Logger, clk clock.Clock, store models.Store, runs models.RunsRepo) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("Unknown timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}

	m := metrics.New()
	c.Config = cfg
	c.Logger = logger
	c.Clock = clk
	c.Metrics = m
	c.Location = loc
	c.Store = store
	c.Runs = runs

	if cfg.EventbriteToken != "" {
		c.Eventbrite = eventbrite.NewClient(cfg.EventbriteAPIBase, cfg.EventbriteToken,
			eventbrite.WithLogger(logger),
			eventbrite.WithObserver(m.RemoteRequest),
		)
		c.SyncService = services.NewSyncService(c.Eventbrite, store, runs, m, clk, logger)

		live := cache.New[[]models.Event](clk, cache.DefaultTTL, logger)
		live.OnLookup = func(r cache.Result) { m.CacheLookup(string(r)) }
		c.LiveEventsService = services.NewLiveEventsService(c.Eventbrite, live, clk, logger)
	}
	if cfg.OpenAIAPIKey != "" {
		c.Classifier = classify.NewOpenAIClassifier(classify.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})
		c.AnalysisService = services.NewAnalysisService(store, c.Classifier, runs, m, clk, logger)
	}

	c.OrganizationService = services.NewOrganizationService(store, runs, m, clk, logger)
	c.InterestService = services.NewInterestService(store, runs, m, clk, logger)
	c.EventService = services.NewEventService(store, clk, loc, logger)
	c.RunsService = services.NewRunsService(runs)
}

// EnableAdminAuth loads the Supabase signing keys so admin routes can verify tokens.
func (c *Container) EnableAdminAuth(ctx context.Context) error {
	v, err := helpers.NewJWKSValidator(ctx, helpers.JWKSURL(c.Config.SupabaseURL), c.Logger)
	if err != nil {
		return err
	}
	c.Tokens = v
	c.closers = append(c.closers, v.Close)
	return nil
}

// CheckConnection runs the one-row probe against the events table.
func (c *Container) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.Store.Ping(ctx); err != nil {
		return fmt.Errorf("storage connection check failed: %w", err)
	}
	return nil
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func disconnectMongo(client *mongo.Client, logger *slog.Logger) {
	if err := connect.MongoDBDisconnect(client); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}
}
