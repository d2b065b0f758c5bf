package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/eventhub/internal/clock"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/query"
)

// Catalog is everything the browser needs to filter locally: displayable events with their
// interest ids attached plus the facet option lists.
type Catalog struct {
	Events  []models.Event
	Dataset query.Dataset
}

type Facets struct {
	Organizations []models.Organization `json:"organizations"`
	Interests     []models.Interest     `json:"interests"`
	Cities        []string              `json:"cities"`
	Types         query.TypeCounts      `json:"types"`
}

type EventsResult struct {
	Events []models.Event `json:"events"`
	Total  int            `json:"total"`
	Facets Facets         `json:"facets"`
}

type EventService struct {
	store    models.Store
	clock    clock.Clock
	location *time.Location
	logger   *slog.Logger
}

func NewEventService(store models.Store, clk clock.Clock, location *time.Location, logger *slog.Logger) *EventService {
	if location == nil {
		location = time.UTC
	}
	return &EventService{store: store, clock: clk, location: location, logger: logger}
}

// Now is the current time in the service's display timezone.
func (s *EventService) Now() time.Time {
	return s.clock.Now().In(s.location)
}

func (s *EventService) Location() *time.Location {
	return s.location
}

func (s *EventService) LoadCatalog(ctx context.Context) (*Catalog, error) {
	orgs, err := s.store.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load organizations: %w", err)
	}
	interests, err := s.store.ListInterests(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interests: %w", err)
	}
	pairs, err := s.store.ListEventInterests(ctx)
	if err != nil {
		return nil, fmt.Errorf("load event interests: %w", err)
	}
	now := s.clock.Now()
	rows, err := s.store.ListDisplayableEvents(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	idx := query.IndexEventInterests(pairs)
	events := make([]models.Event, 0, len(rows))
	for _, e := range models.EventsFromRows(rows) {
		// Storage filters on end time already; this also drops rows whose end is unreadable.
		if !e.Displayable(now) {
			continue
		}
		e.InterestIDs = idx[e.ID]
		events = append(events, e)
	}

	return &Catalog{
		Events: events,
		Dataset: query.Dataset{
			Organizations:  orgs,
			Interests:      interests,
			EventInterests: idx,
		},
	}, nil
}

// Search loads the catalog and applies opts. Facets describe the unfiltered catalog so every
// option stays selectable.
func (s *EventService) Search(ctx context.Context, opts query.Options) (*EventsResult, error) {
	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	matched := query.Filter(cat.Events, opts, cat.Dataset)
	return &EventsResult{
		Events: matched,
		Total:  len(matched),
		Facets: Facets{
			Organizations: cat.Dataset.Organizations,
			Interests:     cat.Dataset.Interests,
			Cities:        query.Cities(cat.Events),
			Types:         query.CountByType(cat.Events),
		},
	}, nil
}
