package models

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joshua-takyi/eventhub/internal/apperr"
)

// PostgresRepo talks to Postgres directly instead of through PostgREST.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

func PostgresNewRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

const upsertEventSQL = `
INSERT INTO events (
	eventbrite_id, name, description, summary, start_date, end_date, start_utc, end_utc, timezone,
	organizer_id, organizer_name, is_virtual, is_free, status, listed, is_locked,
	venue_name, venue_address, venue_city, venue_latitude, venue_longitude, url, logo_url
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
ON CONFLICT (eventbrite_id) DO UPDATE SET
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	summary = EXCLUDED.summary,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date,
	start_utc = EXCLUDED.start_utc,
	end_utc = EXCLUDED.end_utc,
	timezone = EXCLUDED.timezone,
	organizer_id = EXCLUDED.organizer_id,
	organizer_name = EXCLUDED.organizer_name,
	is_virtual = EXCLUDED.is_virtual,
	is_free = EXCLUDED.is_free,
	status = EXCLUDED.status,
	listed = EXCLUDED.listed,
	is_locked = EXCLUDED.is_locked,
	venue_name = EXCLUDED.venue_name,
	venue_address = EXCLUDED.venue_address,
	venue_city = EXCLUDED.venue_city,
	venue_latitude = EXCLUDED.venue_latitude,
	venue_longitude = EXCLUDED.venue_longitude,
	url = EXCLUDED.url,
	logo_url = EXCLUDED.logo_url`

const selectEventSQL = `
SELECT eventbrite_id, name, description, summary, start_date, end_date, start_utc, end_utc, timezone,
	organizer_id, organizer_name, is_virtual, is_free, status, listed, is_locked,
	venue_name, venue_address, venue_city, venue_latitude, venue_longitude, url, logo_url
FROM events
WHERE status = 'live' AND listed AND NOT is_locked`

func (r *PostgresRepo) Ping(ctx context.Context) error {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM events LIMIT 1`).Scan(&n)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return storageErr("select events", err)
	}
	return nil
}

// UpsertEvents sends the rows as one batch, which Postgres applies atomically.
func (r *PostgresRepo) UpsertEvents(ctx context.Context, rows []EventRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range rows {
		batch.Queue(upsertEventSQL,
			e.EventbriteID, e.Name, e.Description, e.Summary, e.StartDate, e.EndDate,
			parseTimestamp(e.StartUTC), parseTimestamp(e.EndUTC), e.Timezone,
			e.OrganizerID, e.OrganizerName, e.IsVirtual, e.IsFree, e.Status, e.Listed, e.IsLocked,
			e.VenueName, e.VenueAddress, e.VenueCity, e.VenueLatitude, e.VenueLongitude, e.URL, e.LogoURL,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return storageErr("upsert events", err)
	}
	return nil
}

func (r *PostgresRepo) ListDisplayableEvents(ctx context.Context, now time.Time) ([]EventRow, error) {
	return r.queryEvents(ctx, selectEventSQL+` AND end_utc >= $1 ORDER BY start_utc ASC`, now.UTC())
}

func (r *PostgresRepo) ListPublishedEvents(ctx context.Context) ([]EventRow, error) {
	return r.queryEvents(ctx, selectEventSQL)
}

func (r *PostgresRepo) queryEvents(ctx context.Context, query string, args ...any) ([]EventRow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list events", err)
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var e EventRow
		var startUTC, endUTC *time.Time
		if err := rows.Scan(
			&e.EventbriteID, &e.Name, &e.Description, &e.Summary, &e.StartDate, &e.EndDate,
			&startUTC, &endUTC, &e.Timezone,
			&e.OrganizerID, &e.OrganizerName, &e.IsVirtual, &e.IsFree, &e.Status, &e.Listed, &e.IsLocked,
			&e.VenueName, &e.VenueAddress, &e.VenueCity, &e.VenueLatitude, &e.VenueLongitude, &e.URL, &e.LogoURL,
		); err != nil {
			return nil, storageErr("scan event", err)
		}
		e.StartUTC = formatTimestamp(startUTC)
		e.EndUTC = formatTimestamp(endUTC)
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, storageErr("iterate events", rows.Err())
	}
	return out, nil
}

func (r *PostgresRepo) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM organizations ORDER BY name ASC`)
	if err != nil {
		return nil, storageErr("list organizations", err)
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, storageErr("scan organization", err)
		}
		orgs = append(orgs, o)
	}
	if rows.Err() != nil {
		return nil, storageErr("iterate organizations", rows.Err())
	}
	return orgs, nil
}

func (r *PostgresRepo) UpsertOrganizations(ctx context.Context, orgs []Organization) error {
	if len(orgs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, o := range orgs {
		batch.Queue(`
INSERT INTO organizations (id, name) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, o.ID, o.Name)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return storageErr("upsert organizations", err)
	}
	return nil
}

func (r *PostgresRepo) DeleteOrganization(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete organization", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "organization not found")
	}
	return nil
}

func (r *PostgresRepo) ListInterests(ctx context.Context) ([]Interest, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug, description FROM interests ORDER BY name ASC`)
	if err != nil {
		return nil, storageErr("list interests", err)
	}
	defer rows.Close()

	var out []Interest
	for rows.Next() {
		var in Interest
		if err := rows.Scan(&in.ID, &in.Name, &in.Slug, &in.Description); err != nil {
			return nil, storageErr("scan interest", err)
		}
		out = append(out, in)
	}
	if rows.Err() != nil {
		return nil, storageErr("iterate interests", rows.Err())
	}
	return out, nil
}

func (r *PostgresRepo) UpsertInterests(ctx context.Context, interests []Interest) error {
	if len(interests) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, in := range interests {
		batch.Queue(`
INSERT INTO interests (name, slug, description) VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET slug = EXCLUDED.slug, description = EXCLUDED.description`,
			in.Name, in.Slug, in.Description)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return storageErr("upsert interests", err)
	}
	return nil
}

func (r *PostgresRepo) FindInterestByName(ctx context.Context, name string) (*Interest, error) {
	var in Interest
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, description FROM interests WHERE name = $1`, name,
	).Scan(&in.ID, &in.Name, &in.Slug, &in.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("find interest", err)
	}
	return &in, nil
}

func (r *PostgresRepo) ListEventInterests(ctx context.Context) ([]EventInterest, error) {
	rows, err := r.pool.Query(ctx, `SELECT event_id, interest_id FROM event_interests`)
	if err != nil {
		return nil, storageErr("list event interests", err)
	}
	defer rows.Close()

	var out []EventInterest
	for rows.Next() {
		var ei EventInterest
		if err := rows.Scan(&ei.EventID, &ei.InterestID); err != nil {
			return nil, storageErr("scan event interest", err)
		}
		out = append(out, ei)
	}
	if rows.Err() != nil {
		return nil, storageErr("iterate event interests", rows.Err())
	}
	return out, nil
}

func (r *PostgresRepo) InsertEventInterests(ctx context.Context, pairs []EventInterest) error {
	if len(pairs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range pairs {
		batch.Queue(`
INSERT INTO event_interests (event_id, interest_id) VALUES ($1, $2)
ON CONFLICT (event_id, interest_id) DO NOTHING`, p.EventID, p.InterestID)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return storageErr("insert event interests", err)
	}
	return nil
}

func parseTimestamp(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
