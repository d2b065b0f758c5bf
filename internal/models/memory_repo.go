package models

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/joshua-takyi/eventhub/internal/apperr"
)

// MemoryRepo is a process-local Store used for local runs and tests.
type MemoryRepo struct {
	mu        sync.RWMutex
	events    map[string]EventRow
	orgs      map[string]Organization
	interests map[string]Interest // by name
	pairs     map[EventInterest]struct{}
	nextID    int64

	// FailUpsert, when set, is consulted before each UpsertEvents call.
	FailUpsert func(rows []EventRow) error
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		events:    make(map[string]EventRow),
		orgs:      make(map[string]Organization),
		interests: make(map[string]Interest),
		pairs:     make(map[EventInterest]struct{}),
	}
}

func (m *MemoryRepo) Ping(ctx context.Context) error { return nil }

func (m *MemoryRepo) UpsertEvents(ctx context.Context, rows []EventRow) error {
	if m.FailUpsert != nil {
		if err := m.FailUpsert(rows); err != nil {
			return storageErr("upsert events", err)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.events[r.EventbriteID] = r
	}
	return nil
}

func (m *MemoryRepo) ListDisplayableEvents(ctx context.Context, now time.Time) ([]EventRow, error) {
	published, _ := m.ListPublishedEvents(ctx)
	out := published[:0]
	for _, r := range published {
		if EventFromRow(r).Displayable(now) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := EventFromRow(out[i]).Start.Time()
		b, _ := EventFromRow(out[j]).Start.Time()
		return a.Before(b)
	})
	return out, nil
}

func (m *MemoryRepo) ListPublishedEvents(ctx context.Context) ([]EventRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]EventRow, 0, len(m.events))
	for _, r := range m.events {
		if r.Status == StatusLive && r.Listed && !r.IsLocked {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventbriteID < out[j].EventbriteID })
	return out, nil
}

// Events returns every stored row regardless of status.
func (m *MemoryRepo) Events() []EventRow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]EventRow, 0, len(m.events))
	for _, r := range m.events {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventbriteID < out[j].EventbriteID })
	return out
}

func (m *MemoryRepo) ListOrganizations(ctx context.Context) ([]Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Organization, 0, len(m.orgs))
	for _, o := range m.orgs {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepo) UpsertOrganizations(ctx context.Context, orgs []Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range orgs {
		m.orgs[o.ID] = o
	}
	return nil
}

func (m *MemoryRepo) DeleteOrganization(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orgs[id]; !ok {
		return apperr.New(apperr.KindNotFound, "organization not found")
	}
	delete(m.orgs, id)
	return nil
}

func (m *MemoryRepo) ListInterests(ctx context.Context) ([]Interest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Interest, 0, len(m.interests))
	for _, in := range m.interests {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepo) UpsertInterests(ctx context.Context, interests []Interest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, in := range interests {
		if existing, ok := m.interests[in.Name]; ok {
			in.ID = existing.ID
		} else {
			m.nextID++
			in.ID = m.nextID
		}
		m.interests[in.Name] = in
	}
	return nil
}

func (m *MemoryRepo) FindInterestByName(ctx context.Context, name string) (*Interest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.interests[name]
	if !ok {
		return nil, nil
	}
	return &in, nil
}

func (m *MemoryRepo) ListEventInterests(ctx context.Context) ([]EventInterest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]EventInterest, 0, len(m.pairs))
	for p := range m.pairs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EventID != out[j].EventID {
			return out[i].EventID < out[j].EventID
		}
		return out[i].InterestID < out[j].InterestID
	})
	return out, nil
}

func (m *MemoryRepo) InsertEventInterests(ctx context.Context, pairs []EventInterest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range pairs {
		m.pairs[p] = struct{}{}
	}
	return nil
}
