package models

import (
	"context"
	"time"
)

type EventsRepo interface {
	// UpsertEvents writes rows keyed by eventbrite_id.
	UpsertEvents(ctx context.Context, rows []EventRow) error
	// ListDisplayableEvents returns live, listed, unlocked rows ending at or after now, by start.
	ListDisplayableEvents(ctx context.Context, now time.Time) ([]EventRow, error)
	// ListPublishedEvents returns live, listed, unlocked rows regardless of date.
	ListPublishedEvents(ctx context.Context) ([]EventRow, error)
}

type OrganizationsRepo interface {
	ListOrganizations(ctx context.Context) ([]Organization, error)
	UpsertOrganizations(ctx context.Context, orgs []Organization) error
	DeleteOrganization(ctx context.Context, id string) error
}

type InterestsRepo interface {
	ListInterests(ctx context.Context) ([]Interest, error)
	// UpsertInterests writes the taxonomy keyed by name.
	UpsertInterests(ctx context.Context, interests []Interest) error
	// FindInterestByName returns nil, nil when no interest has exactly that name.
	FindInterestByName(ctx context.Context, name string) (*Interest, error)
}

type EventInterestsRepo interface {
	ListEventInterests(ctx context.Context) ([]EventInterest, error)
	// InsertEventInterests stores pairs; an existing pair is left as is.
	InsertEventInterests(ctx context.Context, pairs []EventInterest) error
}

// Store is the whole relational backend.
type Store interface {
	EventsRepo
	OrganizationsRepo
	InterestsRepo
	EventInterestsRepo
	// Ping runs a one-row select against the events table.
	Ping(ctx context.Context) error
}
