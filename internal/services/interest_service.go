package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshua-takyi/eventhub/internal/classify"
	"github.com/joshua-takyi/eventhub/internal/clock"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/metrics"
	"github.com/joshua-takyi/eventhub/internal/models"
)

type InterestService struct {
	interests models.InterestsRepo
	runs      models.RunsRepo
	metrics   *metrics.Metrics
	clock     clock.Clock
	logger    *slog.Logger
}

func NewInterestService(interests models.InterestsRepo, runs models.RunsRepo, m *metrics.Metrics, clk clock.Clock, logger *slog.Logger) *InterestService {
	return &InterestService{interests: interests, runs: runs, metrics: m, clock: clk, logger: logger}
}

// Seed upserts the fixed taxonomy keyed by name. Running it twice is a no-op.
func (s *InterestService) Seed(ctx context.Context) (int, error) {
	run := models.NewJobRun(JobSeedInterests, s.clock.Now())

	rows := make([]models.Interest, 0, len(classify.Taxonomy))
	for _, a := range classify.Taxonomy {
		rows = append(rows, models.Interest{
			Name:        a.Name,
			Slug:        helpers.GenerateSlug(a.Name),
			Description: a.Description,
		})
	}
	err := s.interests.UpsertInterests(ctx, rows)
	run.Counts["interests"] = int64(len(rows))
	finishRun(ctx, s.runs, s.metrics, s.logger, run, s.clock.Now(), err)
	if err != nil {
		return 0, fmt.Errorf("seed interests: %w", err)
	}
	s.logger.Info("Interests seeded", "count", len(rows))
	return len(rows), nil
}

func (s *InterestService) ListInterests(ctx context.Context) ([]models.Interest, error) {
	return s.interests.ListInterests(ctx)
}
