package models

import (
	"strings"
	"time"
)

const (
	EventsTable         = "events"
	OrganizationsTable  = "organizations"
	InterestsTable      = "interests"
	EventInterestsTable = "event_interests"

	StatusLive = "live"

	// LocalLayout is the wall-clock layout the source API uses for start.local / end.local.
	LocalLayout = "2006-01-02T15:04:05"
)

type TextField struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

type DateTime struct {
	Timezone string `json:"timezone"`
	Local    string `json:"local"`
	UTC      string `json:"utc"`
}

// Time resolves the instant, preferring the UTC value and falling back to the local
// wall time in the event's own timezone.
func (d DateTime) Time() (time.Time, bool) {
	if d.UTC != "" {
		if t, err := time.Parse(time.RFC3339, d.UTC); err == nil {
			return t.UTC(), true
		}
	}
	if d.Local == "" {
		return time.Time{}, false
	}
	loc := time.UTC
	if d.Timezone != "" {
		if l, err := time.LoadLocation(d.Timezone); err == nil {
			loc = l
		}
	}
	t, err := time.ParseInLocation(LocalLayout, strings.TrimSuffix(d.Local, "Z"), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// LocalDate is the YYYY-MM-DD part of the local start/end, used to place events on calendar days.
func (d DateTime) LocalDate() string {
	if len(d.Local) >= 10 {
		return d.Local[:10]
	}
	return ""
}

type Address struct {
	Address1                string `json:"address_1"`
	Address2                string `json:"address_2"`
	City                    string `json:"city"`
	Region                  string `json:"region"`
	PostalCode              string `json:"postal_code"`
	Country                 string `json:"country"`
	LocalizedAddressDisplay string `json:"localized_address_display"`
	LocalizedAreaDisplay    string `json:"localized_area_display"`
}

type Venue struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   Address `json:"address"`
	Latitude  string  `json:"latitude"`
	Longitude string  `json:"longitude"`
}

type Logo struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}

type RemoteOrganizer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description TextField `json:"description"`
	LogoID      *string   `json:"logo_id"`
	Logo        *Logo     `json:"logo"`
}

// RemoteEvent is an event as returned by the source API with venue and organizer expanded.
// Listed and IsLocked are pointers because their absence carries meaning.
type RemoteEvent struct {
	ID          string           `json:"id"`
	Name        TextField        `json:"name"`
	Description TextField        `json:"description"`
	Summary     string           `json:"summary"`
	Start       DateTime         `json:"start"`
	End         DateTime         `json:"end"`
	URL         string           `json:"url"`
	VenueID     string           `json:"venue_id"`
	Status      string           `json:"status"`
	Currency    string           `json:"currency,omitempty"`
	Listed      *bool            `json:"listed"`
	IsLocked    *bool            `json:"is_locked"`
	IsFree      bool             `json:"is_free"`
	OnlineEvent bool             `json:"online_event"`
	OrganizerID string           `json:"organizer_id"`
	Organizer   *RemoteOrganizer `json:"organizer"`
	Logo        *Logo            `json:"logo"`
	Venue       *Venue           `json:"venue"`
	Created     string           `json:"created,omitempty"`
	Changed     string           `json:"changed,omitempty"`
	Published   string           `json:"published,omitempty"`
}

type OrganizerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Event is the nested shape served to the browser.
type Event struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Summary     string       `json:"summary,omitempty"`
	Start       DateTime     `json:"start"`
	End         DateTime     `json:"end"`
	URL         string       `json:"url"`
	Status      string       `json:"status"`
	OnlineEvent bool         `json:"online_event"`
	IsFree      bool         `json:"is_free"`
	Listed      bool         `json:"listed"`
	IsLocked    bool         `json:"is_locked"`
	OrganizerID string       `json:"organizer_id"`
	Organizer   OrganizerRef `json:"organizer"`
	Venue       *Venue       `json:"venue,omitempty"`
	Logo        *Logo        `json:"logo,omitempty"`
	InterestIDs []int64      `json:"interest_ids,omitempty"`
}

// City returns the venue city or "".
func (e Event) City() string {
	if e.Venue == nil {
		return ""
	}
	return e.Venue.Address.City
}

// Published reports live, listed and unlocked.
func (e Event) Published() bool {
	return e.Status == StatusLive && e.Listed && !e.IsLocked
}

// Displayable reports whether the event may be shown at now: published and not yet over.
// Events whose end cannot be resolved are treated as over.
func (e Event) Displayable(now time.Time) bool {
	if !e.Published() {
		return false
	}
	end, ok := e.End.Time()
	return ok && !end.Before(now)
}

// EventRow is the flat storage row of the events table. Optional columns are pointers so
// absent values stay null in both directions.
type EventRow struct {
	EventbriteID   string  `json:"eventbrite_id" db:"eventbrite_id" validate:"required"`
	Name           string  `json:"name" db:"name" validate:"required"`
	Description    *string `json:"description" db:"description"`
	Summary        *string `json:"summary" db:"summary"`
	StartDate      string  `json:"start_date" db:"start_date" validate:"required"`
	EndDate        string  `json:"end_date" db:"end_date" validate:"required"`
	StartUTC       *string `json:"start_utc" db:"start_utc"`
	EndUTC         *string `json:"end_utc" db:"end_utc"`
	Timezone       string  `json:"timezone" db:"timezone"`
	OrganizerID    string  `json:"organizer_id" db:"organizer_id" validate:"required"`
	OrganizerName  string  `json:"organizer_name" db:"organizer_name"`
	IsVirtual      bool    `json:"is_virtual" db:"is_virtual"`
	IsFree         bool    `json:"is_free" db:"is_free"`
	Status         string  `json:"status" db:"status" validate:"required"`
	Listed         bool    `json:"listed" db:"listed"`
	IsLocked       bool    `json:"is_locked" db:"is_locked"`
	VenueName      *string `json:"venue_name" db:"venue_name"`
	VenueAddress   *string `json:"venue_address" db:"venue_address"`
	VenueCity      *string `json:"venue_city" db:"venue_city"`
	VenueLatitude  *string `json:"venue_latitude" db:"venue_latitude"`
	VenueLongitude *string `json:"venue_longitude" db:"venue_longitude"`
	URL            string  `json:"url" db:"url" validate:"required"`
	LogoURL        *string `json:"logo_url" db:"logo_url"`
}

func (r *EventRow) Validate() error {
	return Validate.Struct(r)
}
