package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/joshua-takyi/eventhub/internal/apperr"
	"github.com/joshua-takyi/eventhub/internal/cache"
	"github.com/joshua-takyi/eventhub/internal/clock"
	"github.com/joshua-takyi/eventhub/internal/models"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolPtr(b bool) *bool { return &b }

func remoteEvent(id, organizer string, start time.Time) models.RemoteEvent {
	end := start.Add(2 * time.Hour)
	return models.RemoteEvent{
		ID:          id,
		Name:        models.TextField{Text: "Event " + id},
		Description: models.TextField{Text: "About " + id},
		Start:       models.DateTime{Timezone: "UTC", Local: start.Format(models.LocalLayout), UTC: start.Format(time.RFC3339)},
		End:         models.DateTime{Timezone: "UTC", Local: end.Format(models.LocalLayout), UTC: end.Format(time.RFC3339)},
		URL:         "https://www.eventbrite.com/e/" + id,
		Status:      models.StatusLive,
		Listed:      boolPtr(true),
		IsLocked:    boolPtr(false),
		OrganizerID: organizer,
		Organizer:   &models.RemoteOrganizer{ID: organizer, Name: "Org " + organizer},
	}
}

type fakeSource struct {
	mu          sync.Mutex
	events      map[string][]models.RemoteEvent
	failing     map[string]error
	content     map[string]string
	eventCalls  int
	contentCall int
}

func (f *fakeSource) OrganizerEvents(ctx context.Context, id string, now time.Time) ([]models.RemoteEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventCalls++
	if err := f.failing[id]; err != nil {
		return nil, err
	}
	return append([]models.RemoteEvent(nil), f.events[id]...), nil
}

func (f *fakeSource) OrganizationEvents(ctx context.Context, id string, q url.Values) ([]models.RemoteEvent, error) {
	return f.OrganizerEvents(ctx, id, time.Time{})
}

func (f *fakeSource) StructuredContent(ctx context.Context, eventID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contentCall++
	text, ok := f.content[eventID]
	if !ok {
		return "", apperr.New(apperr.KindFetch, "no content")
	}
	return text, nil
}

func newSync(src EventSource, repo *models.MemoryRepo, runs models.RunsRepo) *SyncService {
	s := NewSyncService(src, repo, runs, nil, clock.NewFixed(testNow), discardLogger())
	s.Delays = SyncDelays{}
	return s
}

func TestSyncEventsBothEndpointsFailingContinues(t *testing.T) {
	src := &fakeSource{
		events: map[string][]models.RemoteEvent{
			"good": {remoteEvent("e1", "good", testNow.Add(24*time.Hour))},
		},
		failing: map[string]error{
			"gone": &apperr.Error{Kind: apperr.KindNotFound, Message: "Both endpoints failed"},
		},
	}
	repo := models.NewMemoryRepo()
	runs := models.NewLogRunsRepo(discardLogger(), 10)

	report, err := newSync(src, repo, runs).SyncEvents(context.Background(), []string{"gone", "good"})
	if err != nil {
		t.Fatal(err)
	}
	if report.OrganizersFailed != 1 || report.OrganizersOK != 1 || report.RowsUpserted != 1 {
		t.Errorf("report = %+v", report)
	}
	if got := repo.Events(); len(got) != 1 || got[0].EventbriteID != "e1" {
		t.Errorf("rows = %+v", got)
	}

	recorded, _ := runs.ListRuns(context.Background(), JobSyncEvents, 5)
	if len(recorded) != 1 || recorded[0].Status != models.RunSucceeded || recorded[0].Counts["organizers_failed"] != 1 {
		t.Errorf("runs = %+v", recorded)
	}
}

func TestSyncEventsTwiceKeepsOneRowPerEvent(t *testing.T) {
	src := &fakeSource{events: map[string][]models.RemoteEvent{
		"o1": {remoteEvent("e1", "o1", testNow.Add(time.Hour)), remoteEvent("e2", "o1", testNow.Add(2*time.Hour))},
	}}
	repo := models.NewMemoryRepo()
	svc := newSync(src, repo, nil)

	for i := 0; i < 2; i++ {
		if _, err := svc.SyncEvents(context.Background(), []string{"o1"}); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(repo.Events()); got != 2 {
		t.Errorf("rows = %d, want 2", got)
	}
}

func TestSyncEventsStoresStructuredContentAsSummary(t *testing.T) {
	src := &fakeSource{
		events:  map[string][]models.RemoteEvent{"o1": {remoteEvent("e1", "o1", testNow), remoteEvent("e2", "o1", testNow)}},
		content: map[string]string{"e1": "Full agenda"},
	}
	repo := models.NewMemoryRepo()
	if _, err := newSync(src, repo, nil).SyncEvents(context.Background(), []string{"o1"}); err != nil {
		t.Fatal(err)
	}
	rows := repo.Events()
	if rows[0].Summary == nil || *rows[0].Summary != "Full agenda" {
		t.Errorf("e1 summary = %v", rows[0].Summary)
	}
	if rows[1].Summary != nil {
		t.Errorf("e2 summary = %q, want null", *rows[1].Summary)
	}
	if src.contentCall != 2 {
		t.Errorf("content calls = %d", src.contentCall)
	}
}

func TestSyncEventsSkipsInvalidRowsAndFailedBatches(t *testing.T) {
	var events []models.RemoteEvent
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		events = append(events, remoteEvent(id, "o1", testNow))
	}
	events[1].URL = "" // fails validation
	src := &fakeSource{events: map[string][]models.RemoteEvent{"o1": events}}

	repo := models.NewMemoryRepo()
	calls := 0
	repo.FailUpsert = func(rows []models.EventRow) error {
		calls++
		if calls == 1 {
			return errors.New("connection reset")
		}
		return nil
	}
	svc := newSync(src, repo, nil)
	svc.BatchSize = 2

	report, err := svc.SyncEvents(context.Background(), []string{"o1"})
	if err != nil {
		t.Fatal(err)
	}
	if report.RowsSkipped != 1 || report.BatchesFailed != 1 || report.RowsUpserted != 2 {
		t.Errorf("report = %+v", report)
	}
	if len(repo.Events()) != 2 {
		t.Errorf("rows = %+v", repo.Events())
	}
}

func TestSyncEventsStopsOnCancel(t *testing.T) {
	src := &fakeSource{events: map[string][]models.RemoteEvent{}}
	svc := newSync(src, models.NewMemoryRepo(), nil)
	svc.Delays.Organizer = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.SyncEvents(ctx, []string{"a", "b"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if src.eventCalls != 1 {
		t.Errorf("event calls = %d, want 1", src.eventCalls)
	}
}

type fakeClassifier struct {
	responses map[string]string
	errs      map[string]error
	calls     int
}

func (f *fakeClassifier) Classify(ctx context.Context, name, description, summary string) (string, error) {
	f.calls++
	if err := f.errs[name]; err != nil {
		return "", err
	}
	return f.responses[name], nil
}

func seededRepo(t *testing.T) *models.MemoryRepo {
	t.Helper()
	repo := models.NewMemoryRepo()
	if _, err := NewInterestService(repo, nil, nil, clock.NewFixed(testNow), discardLogger()).Seed(context.Background()); err != nil {
		t.Fatal(err)
	}
	return repo
}

func storeEvents(t *testing.T, repo *models.MemoryRepo, events ...models.RemoteEvent) {
	t.Helper()
	rows := make([]models.EventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, models.RowFromRemote(e))
	}
	if err := repo.UpsertEvents(context.Background(), rows); err != nil {
		t.Fatal(err)
	}
}

func newAnalysis(repo *models.MemoryRepo, c *fakeClassifier) *AnalysisService {
	s := NewAnalysisService(repo, c, nil, nil, clock.NewFixed(testNow), discardLogger())
	s.Delays = AnalysisDelays{}
	return s
}

func TestAnalyzeStoresMatchingInterest(t *testing.T) {
	repo := seededRepo(t)
	storeEvents(t, repo, remoteEvent("e1", "o1", testNow))
	c := &fakeClassifier{responses: map[string]string{
		"Event e1": "```json\n{\"Funding and Investment\": \"pitch night\"}\n```",
	}}

	report, err := newAnalysis(repo, c).AnalyzePending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	pairs, _ := repo.ListEventInterests(context.Background())
	funding, _ := repo.FindInterestByName(context.Background(), "Funding and Investment")
	if len(pairs) != 1 || pairs[0].EventID != "e1" || pairs[0].InterestID != funding.ID {
		t.Errorf("pairs = %+v", pairs)
	}
	if report.Analyzed != 1 || report.PairsInserted != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestAnalyzeUnknownNameInsertsNothing(t *testing.T) {
	repo := seededRepo(t)
	storeEvents(t, repo, remoteEvent("e1", "o1", testNow))
	c := &fakeClassifier{responses: map[string]string{"Event e1": `{"Underwater Basketry": "no"}`}}

	report, err := newAnalysis(repo, c).AnalyzePending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	pairs, _ := repo.ListEventInterests(context.Background())
	if len(pairs) != 0 {
		t.Errorf("pairs = %+v", pairs)
	}
	if report.NoMatch != 1 || report.UnmatchedNames != 1 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestAnalyzeSkipsDoneAndUnpublishedAndContinuesAfterFailure(t *testing.T) {
	repo := seededRepo(t)
	locked := remoteEvent("locked", "o1", testNow)
	locked.IsLocked = boolPtr(true)
	storeEvents(t, repo,
		remoteEvent("done", "o1", testNow),
		remoteEvent("bad", "o1", testNow),
		remoteEvent("ok", "o1", testNow),
		locked,
	)
	funding, _ := repo.FindInterestByName(context.Background(), "Funding and Investment")
	_ = repo.InsertEventInterests(context.Background(), []models.EventInterest{{EventID: "done", InterestID: funding.ID}})

	c := &fakeClassifier{
		responses: map[string]string{
			"Event bad": "not json",
			"Event ok":  `{"Data Analytics": "dashboards", "Human Resources": "hiring"}`,
		},
	}
	report, err := newAnalysis(repo, c).AnalyzePending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if c.calls != 2 {
		t.Errorf("classifier calls = %d, want 2", c.calls)
	}
	if report.Pending != 2 || report.Failed != 1 || report.Analyzed != 1 || report.PairsInserted != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestAnalyzeSkipsEndedEvents(t *testing.T) {
	repo := seededRepo(t)
	storeEvents(t, repo,
		remoteEvent("past", "o1", testNow.Add(-48*time.Hour)),
		remoteEvent("upcoming", "o1", testNow.Add(24*time.Hour)),
	)
	c := &fakeClassifier{responses: map[string]string{"Event upcoming": `{"Data Analytics": "dashboards"}`}}

	report, err := newAnalysis(repo, c).AnalyzePending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if c.calls != 1 || report.Pending != 1 || report.Analyzed != 1 {
		t.Errorf("calls = %d, report = %+v", c.calls, report)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := models.NewMemoryRepo()
	svc := NewInterestService(repo, nil, nil, clock.NewFixed(testNow), discardLogger())
	for i := 0; i < 2; i++ {
		if _, err := svc.Seed(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	interests, _ := svc.ListInterests(context.Background())
	if len(interests) != 15 {
		t.Fatalf("interests = %d", len(interests))
	}
	for _, in := range interests {
		if in.Name == "Funding and Investment" && in.Slug != "funding-and-investment" {
			t.Errorf("slug = %q", in.Slug)
		}
	}
}

func TestOrganizationServiceRoster(t *testing.T) {
	repo := models.NewMemoryRepo()
	svc := NewOrganizationService(repo, nil, nil, clock.NewFixed(testNow), discardLogger())
	ctx := context.Background()

	if _, err := svc.SyncRoster(ctx, []models.Organization{{ID: "1", Name: "One"}, {ID: "2", Name: "Two"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddOrganization(ctx, models.Organization{ID: " 3 ", Name: "Three"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddOrganization(ctx, models.Organization{ID: "4"}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("missing name err = %v", err)
	}
	if err := svc.RemoveOrganization(ctx, "2"); err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveOrganization(ctx, "2"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("second remove err = %v", err)
	}
	ids, _ := svc.OrganizerIDs(ctx)
	if len(ids) != 2 {
		t.Errorf("ids = %v", ids)
	}
}

func TestEventServiceExcludesPastEvents(t *testing.T) {
	repo := models.NewMemoryRepo()
	storeEvents(t, repo,
		remoteEvent("past", "o1", testNow.Add(-48*time.Hour)),
		remoteEvent("future", "o1", testNow.Add(48*time.Hour)),
	)
	svc := NewEventService(repo, clock.NewFixed(testNow), time.UTC, discardLogger())

	cat, err := svc.LoadCatalog(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Events) != 1 || cat.Events[0].ID != "future" {
		t.Errorf("events = %+v", cat.Events)
	}
}

func TestLiveEventsCachedAndSorted(t *testing.T) {
	later := remoteEvent("later", "o1", testNow.Add(72*time.Hour))
	sooner := remoteEvent("sooner", "o1", testNow.Add(24*time.Hour))
	unlisted := remoteEvent("hidden", "o1", testNow.Add(time.Hour))
	unlisted.Listed = boolPtr(false)
	src := &fakeSource{
		events:  map[string][]models.RemoteEvent{"o1": {later, unlisted, sooner}},
		content: map[string]string{"sooner": "Long description"},
	}
	clk := clock.NewManual(testNow)
	c := cache.New[[]models.Event](clk, cache.DefaultTTL, discardLogger())
	svc := NewLiveEventsService(src, c, clk, discardLogger())

	events, err := svc.OrganizationEvents(context.Background(), "o1")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].ID != "sooner" || events[1].ID != "later" {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Description != "Long description" || events[1].Description != "About later" {
		t.Errorf("descriptions = %q, %q", events[0].Description, events[1].Description)
	}

	clk.Advance(4 * time.Minute)
	if _, err := svc.OrganizationEvents(context.Background(), "o1"); err != nil {
		t.Fatal(err)
	}
	if src.eventCalls != 1 {
		t.Errorf("remote calls within ttl = %d, want 1", src.eventCalls)
	}
	clk.Advance(2 * time.Minute)
	if _, err := svc.OrganizationEvents(context.Background(), "o1"); err != nil {
		t.Fatal(err)
	}
	if src.eventCalls != 2 {
		t.Errorf("remote calls after ttl = %d, want 2", src.eventCalls)
	}
}
