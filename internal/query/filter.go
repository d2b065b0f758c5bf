package query

import (
	"sort"
	"strings"

	"github.com/joshua-takyi/eventhub/internal/models"
	"golang.org/x/text/cases"
)

type EventType string

const (
	Virtual  EventType = "virtual"
	InPerson EventType = "in-person"
)

// Options holds the user's selections. A nil slice means the facet is unset.
type Options struct {
	OrganizationIDs []string
	InterestIDs     []int64
	Types           []EventType
	Cities          []string
	Search          string
}

// Dataset is the context a filter runs against: the full option lists for each facet and
// the event to interest associations.
type Dataset struct {
	Organizations  []models.Organization
	Interests      []models.Interest
	EventInterests map[string][]int64
}

// IndexEventInterests groups association rows by event id.
func IndexEventInterests(pairs []models.EventInterest) map[string][]int64 {
	idx := make(map[string][]int64)
	for _, p := range pairs {
		idx[p.EventID] = append(idx[p.EventID], p.InterestID)
	}
	return idx
}

// Filter returns the events that pass every facet, in input order.
func Filter(events []models.Event, opts Options, ds Dataset) []models.Event {
	f := newFilter(opts, ds, events)
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if f.match(e) {
			out = append(out, e)
		}
	}
	return out
}

type filter struct {
	orgs      map[string]bool
	interests map[int64]bool
	virtual   bool
	inPerson  bool
	types     bool
	cities    map[string]bool
	search    string
	fold      cases.Caser
	assoc     map[string][]int64
}

func newFilter(opts Options, ds Dataset, events []models.Event) *filter {
	f := &filter{assoc: ds.EventInterests, fold: cases.Fold()}

	if opts.OrganizationIDs != nil {
		set := stringSet(opts.OrganizationIDs)
		ids := make([]string, 0, len(ds.Organizations))
		for _, o := range ds.Organizations {
			ids = append(ids, o.ID)
		}
		if !coversAll(set, ids) {
			f.orgs = set
		}
	}

	if opts.InterestIDs != nil {
		set := make(map[int64]bool, len(opts.InterestIDs))
		for _, id := range opts.InterestIDs {
			set[id] = true
		}
		ids := make([]int64, 0, len(ds.Interests))
		for _, in := range ds.Interests {
			ids = append(ids, in.ID)
		}
		if !coversAll(set, ids) {
			f.interests = set
		}
	}

	if opts.Types != nil {
		for _, t := range opts.Types {
			switch t {
			case Virtual:
				f.virtual = true
			case InPerson:
				f.inPerson = true
			}
		}
		f.types = !(f.virtual && f.inPerson)
	}

	if opts.Cities != nil {
		set := stringSet(opts.Cities)
		if !coversAll(set, Cities(events)) {
			f.cities = set
		}
	}

	f.search = f.fold.String(strings.TrimSpace(opts.Search))
	return f
}

func (f *filter) match(e models.Event) bool {
	if f.orgs != nil && !f.orgs[e.OrganizerID] {
		return false
	}
	if f.interests != nil && !f.matchInterests(e.ID) {
		return false
	}
	if f.types {
		if e.OnlineEvent && !f.virtual {
			return false
		}
		if !e.OnlineEvent && !f.inPerson {
			return false
		}
	}
	if f.cities != nil && !e.OnlineEvent {
		city := e.City()
		if city == "" || !f.cities[city] {
			return false
		}
	}
	if f.search != "" && !f.matchSearch(e) {
		return false
	}
	return true
}

func (f *filter) matchInterests(eventID string) bool {
	for _, id := range f.assoc[eventID] {
		if f.interests[id] {
			return true
		}
	}
	return false
}

func (f *filter) matchSearch(e models.Event) bool {
	fields := []string{e.Name, e.Description, e.City(), e.Organizer.Name}
	if e.Venue != nil {
		fields = append(fields, e.Venue.Name)
	}
	for _, s := range fields {
		if s != "" && strings.Contains(f.fold.String(s), f.search) {
			return true
		}
	}
	return false
}

// Cities lists the distinct cities of in-person events, sorted.
func Cities(events []models.Event) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, e := range events {
		if e.OnlineEvent {
			continue
		}
		if c := e.City(); c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

type TypeCounts struct {
	Virtual  int `json:"virtual"`
	InPerson int `json:"in_person"`
}

func CountByType(events []models.Event) TypeCounts {
	var c TypeCounts
	for _, e := range events {
		if e.OnlineEvent {
			c.Virtual++
		} else {
			c.InPerson++
		}
	}
	return c
}

// coversAll reports whether selected contains every option. With no options, only an
// empty selection counts as everything.
func coversAll[K comparable](selected map[K]bool, options []K) bool {
	if len(options) == 0 {
		return len(selected) == 0
	}
	for _, o := range options {
		if !selected[o] {
			return false
		}
	}
	return true
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
