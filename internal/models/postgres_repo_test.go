package models

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joshua-takyi/eventhub/internal/apperr"
	"github.com/joshua-takyi/eventhub/migrations"
)

// Runs against a disposable database; every table is truncated first.
func newPostgresRepo(t *testing.T) *PostgresRepo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if err := migrations.Up(dsn, nil); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)
	if _, err := pool.Exec(ctx, `TRUNCATE event_interests, events, interests, organizations`); err != nil {
		t.Fatal(err)
	}
	return PostgresNewRepo(pool)
}

func pgRow(id string, end time.Time) EventRow {
	start := end.Add(-2 * time.Hour)
	startUTC, endUTC := start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339)
	city := "Austin"
	venue := "Capital Factory"
	return EventRow{
		EventbriteID: id,
		Name:         "Event " + id,
		StartDate:    start.UTC().Format(LocalLayout),
		EndDate:      end.UTC().Format(LocalLayout),
		StartUTC:     &startUTC,
		EndUTC:       &endUTC,
		Timezone:     "UTC",
		OrganizerID:  "o1",
		Status:       StatusLive,
		Listed:       true,
		VenueName:    &venue,
		VenueCity:    &city,
		URL:          "https://www.eventbrite.com/e/" + id,
	}
}

func TestPostgresRepoEvents(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	rows := []EventRow{pgRow("future", now.Add(48*time.Hour)), pgRow("past", now.Add(-48*time.Hour))}
	for i := 0; i < 2; i++ {
		if err := repo.UpsertEvents(ctx, rows); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatal(err)
	}

	published, err := repo.ListPublishedEvents(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(published) != 2 {
		t.Fatalf("published = %d, want 2", len(published))
	}

	displayable, err := repo.ListDisplayableEvents(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(displayable) != 1 || displayable[0].EventbriteID != "future" {
		t.Fatalf("displayable = %+v", displayable)
	}
	got := displayable[0]
	if got.EndUTC == nil || *got.EndUTC != *rows[0].EndUTC || got.VenueCity == nil || *got.VenueCity != "Austin" {
		t.Errorf("round trip = %+v", got)
	}
	if got.Description != nil {
		t.Errorf("description = %q, want null", *got.Description)
	}
}

func TestPostgresRepoInterestsAndOrganizations(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()

	interests := []Interest{{Name: "Data Analytics", Slug: "data-analytics"}, {Name: "Human Resources", Slug: "human-resources"}}
	for i := 0; i < 2; i++ {
		if err := repo.UpsertInterests(ctx, interests); err != nil {
			t.Fatal(err)
		}
	}
	listed, err := repo.ListInterests(ctx)
	if err != nil || len(listed) != 2 {
		t.Fatalf("interests = %+v err = %v", listed, err)
	}
	missing, err := repo.FindInterestByName(ctx, "Underwater Basketry")
	if err != nil || missing != nil {
		t.Fatalf("missing = %+v err = %v", missing, err)
	}

	if err := repo.UpsertEvents(ctx, []EventRow{pgRow("e1", time.Now().Add(time.Hour))}); err != nil {
		t.Fatal(err)
	}
	data, _ := repo.FindInterestByName(ctx, "Data Analytics")
	pair := EventInterest{EventID: "e1", InterestID: data.ID}
	for i := 0; i < 2; i++ {
		if err := repo.InsertEventInterests(ctx, []EventInterest{pair}); err != nil {
			t.Fatal(err)
		}
	}
	pairs, _ := repo.ListEventInterests(ctx)
	if len(pairs) != 1 || pairs[0] != pair {
		t.Errorf("pairs = %+v", pairs)
	}

	if err := repo.UpsertOrganizations(ctx, []Organization{{ID: "o1", Name: "One"}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteOrganization(ctx, "o1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteOrganization(ctx, "o1"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}
