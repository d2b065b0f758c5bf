package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/joshua-takyi/eventhub/internal/classify"
	"github.com/joshua-takyi/eventhub/internal/clock"
	"github.com/joshua-takyi/eventhub/internal/metrics"
	"github.com/joshua-takyi/eventhub/internal/models"
)

const (
	DefaultAnalysisDelay      = 2 * time.Second
	DefaultAnalysisErrorDelay = 5 * time.Second
)

type AnalysisDelays struct {
	Event   time.Duration
	OnError time.Duration
}

// AnalysisReport counts per-event outcomes. Failed events are skipped, never retried in
// the same run; they stay pending for the next one.
type AnalysisReport struct {
	Pending        int           `json:"pending"`
	Analyzed       int           `json:"analyzed"`
	NoMatch        int           `json:"no_match"`
	Failed         int           `json:"failed"`
	PairsInserted  int           `json:"pairs_inserted"`
	UnmatchedNames int           `json:"unmatched_names"`
	Duration       time.Duration `json:"duration"`
}

func (r AnalysisReport) counts() map[string]int64 {
	return map[string]int64{
		"pending":         int64(r.Pending),
		"analyzed":        int64(r.Analyzed),
		"no_match":        int64(r.NoMatch),
		"failed":          int64(r.Failed),
		"pairs_inserted":  int64(r.PairsInserted),
		"unmatched_names": int64(r.UnmatchedNames),
	}
}

type analysisStore interface {
	models.EventsRepo
	models.InterestsRepo
	models.EventInterestsRepo
}

type AnalysisService struct {
	store      analysisStore
	classifier classify.Classifier
	runs       models.RunsRepo
	metrics    *metrics.Metrics
	clock      clock.Clock
	logger     *slog.Logger

	Delays AnalysisDelays
}

func NewAnalysisService(store models.Store, classifier classify.Classifier, runs models.RunsRepo, m *metrics.Metrics, clk clock.Clock, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		store:      store,
		classifier: classifier,
		runs:       runs,
		metrics:    m,
		clock:      clk,
		logger:     logger,
		Delays:     AnalysisDelays{Event: DefaultAnalysisDelay, OnError: DefaultAnalysisErrorDelay},
	}
}

// PendingEvents returns published events that have not ended and have no interest
// association yet.
func (s *AnalysisService) PendingEvents(ctx context.Context) ([]models.EventRow, error) {
	pairs, err := s.store.ListEventInterests(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		done[p.EventID] = true
	}

	published, err := s.store.ListPublishedEvents(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	pending := make([]models.EventRow, 0, len(published))
	for _, row := range published {
		if !done[row.EventbriteID] && models.EventFromRow(row).Displayable(now) {
			pending = append(pending, row)
		}
	}
	return pending, nil
}

// AnalyzePending classifies every pending event in turn. A per-event failure is logged and
// counted and the loop continues after a longer pause; the returned error is reserved for
// failures that stop the whole batch.
func (s *AnalysisService) AnalyzePending(ctx context.Context) (AnalysisReport, error) {
	start := s.clock.Now()
	run := models.NewJobRun(JobAnalyzeEvents, start)
	var report AnalysisReport

	pending, err := s.PendingEvents(ctx)
	if err == nil {
		report.Pending = len(pending)
		s.logger.Info("Starting event analysis", "pending", len(pending))
		err = s.analyzeAll(ctx, pending, &report)
	}

	report.Duration = s.clock.Now().Sub(start)
	for k, v := range report.counts() {
		run.Counts[k] = v
	}
	finishRun(ctx, s.runs, s.metrics, s.logger, run, s.clock.Now(), err)

	s.logger.Info("Event analysis finished",
		"pending", report.Pending,
		"analyzed", report.Analyzed,
		"no_match", report.NoMatch,
		"failed", report.Failed,
		"unmatched_names", report.UnmatchedNames,
		"duration", report.Duration,
	)
	if err != nil {
		return report, fmt.Errorf("analyze events: %w", err)
	}
	return report, nil
}

func (s *AnalysisService) analyzeAll(ctx context.Context, pending []models.EventRow, report *AnalysisReport) error {
	for i, row := range pending {
		n, err := s.AnalyzeEvent(ctx, row, report)
		switch {
		case err != nil:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			s.logger.Error("Failed to analyze event", "event_id", row.EventbriteID, "error", err)
			report.Failed++
			s.metrics.AnalysisEvent("failed")
			if serr := clock.Sleep(ctx, s.Delays.OnError); serr != nil {
				return serr
			}
			continue
		case n == 0:
			report.NoMatch++
			s.metrics.AnalysisEvent("no_match")
		default:
			report.Analyzed++
			report.PairsInserted += n
			s.metrics.AnalysisEvent("analyzed")
		}

		if i < len(pending)-1 {
			if err := clock.Sleep(ctx, s.Delays.Event); err != nil {
				return err
			}
		}
	}
	return nil
}

// AnalyzeEvent classifies one event and stores the resolved associations, returning how many
// were inserted. Names with no exact interest match are dropped and added to
// report.UnmatchedNames.
func (s *AnalysisService) AnalyzeEvent(ctx context.Context, row models.EventRow, report *AnalysisReport) (int, error) {
	raw, err := s.classifier.Classify(ctx, row.Name, deref(row.Description), deref(row.Summary))
	if err != nil {
		return 0, err
	}
	analysis, err := classify.ParseAnalysis(raw)
	if err != nil {
		return 0, err
	}

	names := analysis.Names()
	sort.Strings(names)

	var pairs []models.EventInterest
	var unmatched int
	for _, name := range names {
		interest, err := s.store.FindInterestByName(ctx, name)
		if err != nil {
			return 0, err
		}
		if interest == nil {
			s.logger.Warn("Unknown interest name", "event_id", row.EventbriteID, "name", name)
			unmatched++
			continue
		}
		pairs = append(pairs, models.EventInterest{EventID: row.EventbriteID, InterestID: interest.ID})
	}
	if report != nil {
		report.UnmatchedNames += unmatched
	}
	s.metrics.UnmatchedNames(unmatched)

	if len(pairs) == 0 {
		s.logger.Info("No matching interests for event", "event_id", row.EventbriteID)
		return 0, nil
	}
	if err := s.store.InsertEventInterests(ctx, pairs); err != nil {
		return 0, err
	}
	s.logger.Info("Event interests stored", "event_id", row.EventbriteID, "count", len(pairs))
	return len(pairs), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
