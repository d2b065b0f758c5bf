package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/joshua-takyi/eventhub/internal/metrics"
	"github.com/joshua-takyi/eventhub/internal/models"
)

const (
	JobSyncEvents        = "sync-events"
	JobSyncOrganizations = "sync-organizations"
	JobSeedInterests     = "seed-interests"
	JobAnalyzeEvents     = "analyze-events"
)

// finishRun stamps the run, records it and reports the duration. Recording failures are
// logged only; a job's outcome never depends on its history being written.
func finishRun(ctx context.Context, runs models.RunsRepo, m *metrics.Metrics, logger *slog.Logger, run *models.JobRun, finishedAt time.Time, err error) {
	run.FinishedAt = finishedAt.UTC()
	if err != nil {
		run.Status = models.RunFailed
		run.Error = err.Error()
	}
	m.JobFinished(run.Job, run.FinishedAt.Sub(run.StartedAt).Seconds())
	if runs == nil {
		return
	}
	if rerr := runs.RecordRun(ctx, run); rerr != nil {
		logger.Warn("Failed to record job run", "job", run.Job, "run_id", run.ID, "error", rerr)
	}
}

type RunsService struct {
	runs models.RunsRepo
}

func NewRunsService(runs models.RunsRepo) *RunsService {
	return &RunsService{runs: runs}
}

func (rs *RunsService) ListRuns(ctx context.Context, job string, limit int) ([]models.JobRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return rs.runs.ListRuns(ctx, job, limit)
}
