package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joshua-takyi/eventhub/internal/apperr"
	"github.com/supabase-community/postgrest-go"
)

const eventColumns = "eventbrite_id,name,description,summary,start_date,end_date,start_utc,end_utc,timezone," +
	"organizer_id,organizer_name,is_virtual,is_free,status,listed,is_locked," +
	"venue_name,venue_address,venue_city,venue_latitude,venue_longitude,url,logo_url"

func storageErr(op string, err error) error {
	return apperr.Wrap(apperr.KindStorage, op, err)
}

func (su *SupabaseRepo) Ping(ctx context.Context) error {
	_, _, err := su.supabaseClient.From(EventsTable).
		Select("eventbrite_id", "", false).
		Limit(1, "").
		Execute()
	if err != nil {
		return storageErr("select events", err)
	}
	return nil
}

func (su *SupabaseRepo) UpsertEvents(ctx context.Context, rows []EventRow) error {
	if len(rows) == 0 {
		return nil
	}
	_, _, err := su.supabaseClient.From(EventsTable).
		Upsert(rows, "eventbrite_id", "minimal", "").
		Execute()
	if err != nil {
		return storageErr(fmt.Sprintf("upsert %d events", len(rows)), err)
	}
	return nil
}

func (su *SupabaseRepo) ListDisplayableEvents(ctx context.Context, now time.Time) ([]EventRow, error) {
	data, _, err := su.supabaseClient.From(EventsTable).
		Select(eventColumns, "", false).
		Eq("status", StatusLive).
		Eq("listed", "true").
		Eq("is_locked", "false").
		Gte("end_utc", now.UTC().Format(time.RFC3339)).
		Order("start_utc", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, storageErr("list displayable events", err)
	}
	return decodeRows[EventRow](data, "events")
}

func (su *SupabaseRepo) ListPublishedEvents(ctx context.Context) ([]EventRow, error) {
	data, _, err := su.supabaseClient.From(EventsTable).
		Select(eventColumns, "", false).
		Eq("status", StatusLive).
		Eq("listed", "true").
		Eq("is_locked", "false").
		Execute()
	if err != nil {
		return nil, storageErr("list published events", err)
	}
	return decodeRows[EventRow](data, "events")
}

func (su *SupabaseRepo) ListOrganizations(ctx context.Context) ([]Organization, error) {
	data, _, err := su.supabaseClient.From(OrganizationsTable).
		Select("id,name", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, storageErr("list organizations", err)
	}
	return decodeRows[Organization](data, "organizations")
}

func (su *SupabaseRepo) UpsertOrganizations(ctx context.Context, orgs []Organization) error {
	if len(orgs) == 0 {
		return nil
	}
	_, _, err := su.supabaseClient.From(OrganizationsTable).
		Upsert(orgs, "id", "minimal", "").
		Execute()
	if err != nil {
		return storageErr("upsert organizations", err)
	}
	return nil
}

func (su *SupabaseRepo) DeleteOrganization(ctx context.Context, id string) error {
	_, count, err := su.supabaseClient.From(OrganizationsTable).
		Delete("minimal", "exact").
		Eq("id", id).
		Execute()
	if err != nil {
		return storageErr("delete organization", err)
	}
	if count == 0 {
		return apperr.New(apperr.KindNotFound, "organization not found")
	}
	return nil
}

func (su *SupabaseRepo) ListInterests(ctx context.Context) ([]Interest, error) {
	data, _, err := su.supabaseClient.From(InterestsTable).
		Select("id,name,slug,description", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, storageErr("list interests", err)
	}
	return decodeRows[Interest](data, "interests")
}

func (su *SupabaseRepo) UpsertInterests(ctx context.Context, interests []Interest) error {
	if len(interests) == 0 {
		return nil
	}
	// id is generated by the database
	payload := make([]map[string]string, 0, len(interests))
	for _, in := range interests {
		payload = append(payload, map[string]string{
			"name":        in.Name,
			"slug":        in.Slug,
			"description": in.Description,
		})
	}
	_, _, err := su.supabaseClient.From(InterestsTable).
		Upsert(payload, "name", "minimal", "").
		Execute()
	if err != nil {
		return storageErr("upsert interests", err)
	}
	return nil
}

func (su *SupabaseRepo) FindInterestByName(ctx context.Context, name string) (*Interest, error) {
	data, _, err := su.supabaseClient.From(InterestsTable).
		Select("id,name,slug,description", "", false).
		Eq("name", name).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, storageErr("find interest", err)
	}
	found, err := decodeRows[Interest](data, "interests")
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (su *SupabaseRepo) ListEventInterests(ctx context.Context) ([]EventInterest, error) {
	data, _, err := su.supabaseClient.From(EventInterestsTable).
		Select("event_id,interest_id", "", false).
		Execute()
	if err != nil {
		return nil, storageErr("list event interests", err)
	}
	return decodeRows[EventInterest](data, "event interests")
}

func (su *SupabaseRepo) InsertEventInterests(ctx context.Context, pairs []EventInterest) error {
	if len(pairs) == 0 {
		return nil
	}
	_, _, err := su.supabaseClient.From(EventInterestsTable).
		Upsert(pairs, "event_id,interest_id", "minimal", "").
		Execute()
	if err != nil {
		return storageErr("insert event interests", err)
	}
	return nil
}

// Supabase returns an array even for single results
func decodeRows[T any](data []byte, what string) ([]T, error) {
	var rows []T
	if len(data) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, apperr.Wrap(apperr.KindParse, "decode "+what, err)
	}
	return rows, nil
}
