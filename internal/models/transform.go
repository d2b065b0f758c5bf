package models

import "time"

// FromRemote maps a source event to the internal shape. Text and timestamps pass through unchanged.
func FromRemote(r RemoteEvent) Event {
	e := Event{
		ID:          r.ID,
		Name:        r.Name.Text,
		Description: r.Description.Text,
		Summary:     r.Summary,
		Start:       r.Start,
		End:         r.End,
		URL:         r.URL,
		Status:      r.Status,
		OnlineEvent: r.OnlineEvent,
		IsFree:      r.IsFree,
		Listed:      r.Listed == nil || *r.Listed,
		IsLocked:    r.IsLocked != nil && *r.IsLocked,
		OrganizerID: r.OrganizerID,
		Organizer:   OrganizerRef{ID: r.OrganizerID},
	}
	if r.Organizer != nil {
		e.Organizer.Name = r.Organizer.Name
		if e.OrganizerID == "" {
			e.OrganizerID = r.Organizer.ID
			e.Organizer.ID = r.Organizer.ID
		}
	}
	if r.Venue != nil {
		v := *r.Venue
		e.Venue = &v
	}
	if r.Logo != nil && r.Logo.URL != "" {
		e.Logo = &Logo{URL: r.Logo.URL}
	}
	return e
}

// RowFromRemote flattens a source event into a storage row.
func RowFromRemote(r RemoteEvent) EventRow {
	return RowFromEvent(FromRemote(r))
}

func RowFromEvent(e Event) EventRow {
	row := EventRow{
		EventbriteID:  e.ID,
		Name:          e.Name,
		Description:   optional(e.Description),
		Summary:       optional(e.Summary),
		StartDate:     e.Start.Local,
		EndDate:       e.End.Local,
		StartUTC:      utcColumn(e.Start),
		EndUTC:        utcColumn(e.End),
		Timezone:      e.Start.Timezone,
		OrganizerID:   e.OrganizerID,
		OrganizerName: e.Organizer.Name,
		IsVirtual:     e.OnlineEvent,
		IsFree:        e.IsFree,
		Status:        e.Status,
		Listed:        e.Listed,
		IsLocked:      e.IsLocked,
		URL:           e.URL,
	}
	if e.Venue != nil {
		row.VenueName = optional(e.Venue.Name)
		row.VenueAddress = optional(e.Venue.Address.LocalizedAddressDisplay)
		row.VenueCity = optional(e.Venue.Address.City)
		row.VenueLatitude = optional(e.Venue.Latitude)
		row.VenueLongitude = optional(e.Venue.Longitude)
	}
	if e.Logo != nil {
		row.LogoURL = optional(e.Logo.URL)
	}
	return row
}

// utcColumn fills the UTC column from the local wall time when the source omits it, so every
// backend can filter on end_utc alone.
func utcColumn(d DateTime) *string {
	t, ok := d.Time()
	if !ok {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}

// EventFromRow rebuilds the nested shape. The venue exists only when venue_name is set.
func EventFromRow(row EventRow) Event {
	e := Event{
		ID:          row.EventbriteID,
		Name:        row.Name,
		Description: deref(row.Description),
		Summary:     deref(row.Summary),
		Start:       DateTime{Timezone: row.Timezone, Local: row.StartDate, UTC: deref(row.StartUTC)},
		End:         DateTime{Timezone: row.Timezone, Local: row.EndDate, UTC: deref(row.EndUTC)},
		URL:         row.URL,
		Status:      row.Status,
		OnlineEvent: row.IsVirtual,
		IsFree:      row.IsFree,
		Listed:      row.Listed,
		IsLocked:    row.IsLocked,
		OrganizerID: row.OrganizerID,
		Organizer:   OrganizerRef{ID: row.OrganizerID, Name: row.OrganizerName},
	}
	if name := deref(row.VenueName); name != "" {
		e.Venue = &Venue{
			Name: name,
			Address: Address{
				City:                    deref(row.VenueCity),
				LocalizedAddressDisplay: deref(row.VenueAddress),
			},
			Latitude:  deref(row.VenueLatitude),
			Longitude: deref(row.VenueLongitude),
		}
	}
	if u := deref(row.LogoURL); u != "" {
		e.Logo = &Logo{URL: u}
	}
	return e
}

func EventsFromRows(rows []EventRow) []Event {
	out := make([]Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, EventFromRow(r))
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
