package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshua-takyi/eventhub/internal/apperr"
	"github.com/joshua-takyi/eventhub/internal/clock"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/metrics"
	"github.com/joshua-takyi/eventhub/internal/models"
)

type OrganizationService struct {
	orgs    models.OrganizationsRepo
	runs    models.RunsRepo
	metrics *metrics.Metrics
	clock   clock.Clock
	logger  *slog.Logger
}

func NewOrganizationService(orgs models.OrganizationsRepo, runs models.RunsRepo, m *metrics.Metrics, clk clock.Clock, logger *slog.Logger) *OrganizationService {
	return &OrganizationService{orgs: orgs, runs: runs, metrics: m, clock: clk, logger: logger}
}

// SyncRoster upserts the curated roster keyed by id. Entries already in storage but absent
// from the roster are left alone.
func (s *OrganizationService) SyncRoster(ctx context.Context, roster []models.Organization) (int, error) {
	run := models.NewJobRun(JobSyncOrganizations, s.clock.Now())
	err := s.upsert(ctx, roster)
	run.Counts["organizations"] = int64(len(roster))
	finishRun(ctx, s.runs, s.metrics, s.logger, run, s.clock.Now(), err)
	if err != nil {
		return 0, fmt.Errorf("sync organizations: %w", err)
	}
	s.logger.Info("Organizations synced", "count", len(roster))
	return len(roster), nil
}

func (s *OrganizationService) AddOrganization(ctx context.Context, org models.Organization) (*models.Organization, error) {
	org.ID = helpers.StringTrim(org.ID)
	org.Name = helpers.StringTrim(org.Name)
	if err := s.upsert(ctx, []models.Organization{org}); err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *OrganizationService) RemoveOrganization(ctx context.Context, id string) error {
	id = helpers.StringTrim(id)
	if id == "" {
		return apperr.New(apperr.KindValidation, "organization id is required")
	}
	return s.orgs.DeleteOrganization(ctx, id)
}

func (s *OrganizationService) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	return s.orgs.ListOrganizations(ctx)
}

// OrganizerIDs lists the ids of every stored organization, the input to an events sync.
func (s *OrganizationService) OrganizerIDs(ctx context.Context) ([]string, error) {
	orgs, err := s.orgs.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(orgs))
	for _, o := range orgs {
		ids = append(ids, o.ID)
	}
	return ids, nil
}

func (s *OrganizationService) upsert(ctx context.Context, orgs []models.Organization) error {
	for i := range orgs {
		if err := models.Validate.Struct(orgs[i]); err != nil {
			return apperr.Wrap(apperr.KindValidation, "invalid organization", err)
		}
	}
	if len(orgs) == 0 {
		return nil
	}
	return s.orgs.UpsertOrganizations(ctx, orgs)
}
