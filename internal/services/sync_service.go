package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshua-takyi/eventhub/internal/clock"
	"github.com/joshua-takyi/eventhub/internal/metrics"
	"github.com/joshua-takyi/eventhub/internal/models"
)

const (
	DefaultBatchSize      = 10
	DefaultOrganizerDelay = 2 * time.Second
	DefaultBatchDelay     = 500 * time.Millisecond
)

// EventSource is the remote side of the sync: upcoming events per organizer plus the
// structured long-form content of a single event.
type EventSource interface {
	OrganizerEvents(ctx context.Context, id string, now time.Time) ([]models.RemoteEvent, error)
	StructuredContent(ctx context.Context, eventID string) (string, error)
}

type SyncDelays struct {
	Organizer time.Duration
	Batch     time.Duration
}

type SyncReport struct {
	OrganizersOK     int           `json:"organizers_ok"`
	OrganizersFailed int           `json:"organizers_failed"`
	EventsFetched    int           `json:"events_fetched"`
	RowsSkipped      int           `json:"rows_skipped"`
	RowsUpserted     int           `json:"rows_upserted"`
	BatchesFailed    int           `json:"batches_failed"`
	Duration         time.Duration `json:"duration"`
}

func (r SyncReport) counts() map[string]int64 {
	return map[string]int64{
		"organizers_ok":     int64(r.OrganizersOK),
		"organizers_failed": int64(r.OrganizersFailed),
		"events_fetched":    int64(r.EventsFetched),
		"rows_skipped":      int64(r.RowsSkipped),
		"rows_upserted":     int64(r.RowsUpserted),
		"batches_failed":    int64(r.BatchesFailed),
	}
}

type SyncService struct {
	source  EventSource
	events  models.EventsRepo
	runs    models.RunsRepo
	metrics *metrics.Metrics
	clock   clock.Clock
	logger  *slog.Logger

	Delays    SyncDelays
	BatchSize int
}

func NewSyncService(source EventSource, events models.EventsRepo, runs models.RunsRepo, m *metrics.Metrics, clk clock.Clock, logger *slog.Logger) *SyncService {
	return &SyncService{
		source:    source,
		events:    events,
		runs:      runs,
		metrics:   m,
		clock:     clk,
		logger:    logger,
		Delays:    SyncDelays{Organizer: DefaultOrganizerDelay, Batch: DefaultBatchDelay},
		BatchSize: DefaultBatchSize,
	}
}

// SyncEvents pulls every organizer's upcoming events and upserts them by remote id.
// Organizer and batch failures are logged and counted; only cancellation aborts the run.
func (s *SyncService) SyncEvents(ctx context.Context, organizerIDs []string) (SyncReport, error) {
	start := s.clock.Now()
	run := models.NewJobRun(JobSyncEvents, start)
	var report SyncReport

	s.logger.Info("Starting event sync", "organizers", len(organizerIDs))

	var rows []models.EventRow
	var err error
	for i, id := range organizerIDs {
		if i > 0 {
			if err = clock.Sleep(ctx, s.Delays.Organizer); err != nil {
				break
			}
		}

		remote, ferr := s.source.OrganizerEvents(ctx, id, s.clock.Now())
		if ferr != nil {
			if errors.Is(ferr, context.Canceled) || errors.Is(ferr, context.DeadlineExceeded) {
				err = ferr
				break
			}
			s.logger.Error("Failed to fetch organizer events", "organizer_id", id, "error", ferr)
			report.OrganizersFailed++
			s.metrics.OrganizerSynced(false)
			continue
		}

		report.OrganizersOK++
		report.EventsFetched += len(remote)
		s.metrics.OrganizerSynced(true)
		s.logger.Info("Fetched organizer events", "organizer_id", id, "count", len(remote))

		s.attachContent(ctx, remote)
		for _, r := range remote {
			row := models.RowFromRemote(r)
			if verr := row.Validate(); verr != nil {
				s.logger.Warn("Skipping invalid event", "event_id", r.ID, "organizer_id", id, "error", verr)
				report.RowsSkipped++
				continue
			}
			rows = append(rows, row)
		}
	}

	if err == nil {
		err = s.upsert(ctx, rows, &report)
	}

	report.Duration = s.clock.Now().Sub(start)
	for k, v := range report.counts() {
		run.Counts[k] = v
	}
	finishRun(ctx, s.runs, s.metrics, s.logger, run, s.clock.Now(), err)

	s.logger.Info("Event sync finished",
		"organizers_ok", report.OrganizersOK,
		"organizers_failed", report.OrganizersFailed,
		"events_fetched", report.EventsFetched,
		"rows_upserted", report.RowsUpserted,
		"rows_skipped", report.RowsSkipped,
		"batches_failed", report.BatchesFailed,
		"duration", report.Duration,
	)
	if err != nil {
		return report, fmt.Errorf("sync events: %w", err)
	}
	return report, nil
}

// attachContent replaces each event's summary with its structured content, fetched
// concurrently. A failed fetch leaves the summary empty.
func (s *SyncService) attachContent(ctx context.Context, events []models.RemoteEvent) {
	content := make([]string, len(events))
	var g errgroup.Group
	for i := range events {
		i := i // per-iteration copy; go.mod targets go1.21 loop semantics
		g.Go(func() error {
			text, err := s.source.StructuredContent(ctx, events[i].ID)
			if err != nil {
				s.logger.Debug("Structured content unavailable", "event_id", events[i].ID, "error", err)
				return nil
			}
			content[i] = text
			return nil
		})
	}
	_ = g.Wait()
	for i := range events {
		events[i].Summary = content[i]
	}
}

func (s *SyncService) upsert(ctx context.Context, rows []models.EventRow, report *SyncReport) error {
	size := s.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start, batch := 0, 1; start < len(rows); start, batch = start+size, batch+1 {
		if start > 0 {
			if err := clock.Sleep(ctx, s.Delays.Batch); err != nil {
				return err
			}
		}
		end := min(start+size, len(rows))
		chunk := rows[start:end]
		if err := s.events.UpsertEvents(ctx, chunk); err != nil {
			s.logger.Error("Failed to upsert event batch", "batch", batch, "size", len(chunk), "error", err)
			report.BatchesFailed++
			s.metrics.BatchFailed()
			continue
		}
		report.RowsUpserted += len(chunk)
		s.metrics.EventsUpserted(len(chunk))
	}
	return nil
}
