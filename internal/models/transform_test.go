package models

import (
	"reflect"
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }

func remoteFixture() RemoteEvent {
	return RemoteEvent{
		ID:          "1001",
		Name:        TextField{Text: "Founder Breakfast", HTML: "<p>Founder Breakfast</p>"},
		Description: TextField{Text: "Coffee and pitches"},
		Summary:     "Long form body",
		Start:       DateTime{Timezone: "America/Chicago", Local: "2025-04-02T08:00:00", UTC: "2025-04-02T13:00:00Z"},
		End:         DateTime{Timezone: "America/Chicago", Local: "2025-04-02T10:00:00", UTC: "2025-04-02T15:00:00Z"},
		URL:         "https://www.eventbrite.com/e/1001",
		Status:      "live",
		IsFree:      true,
		OrganizerID: "77",
		Organizer:   &RemoteOrganizer{ID: "77", Name: "Austin Founders"},
		Venue: &Venue{
			ID:   "v1",
			Name: "Capital Factory",
			Address: Address{
				City:                    "Austin",
				LocalizedAddressDisplay: "701 Brazos St, Austin, TX",
			},
			Latitude:  "30.2688",
			Longitude: "-97.7404",
		},
		Logo: &Logo{URL: "https://img.evbuc.com/logo.png"},
	}
}

func TestRowFromRemoteFlags(t *testing.T) {
	cases := []struct {
		name       string
		listed     *bool
		locked     *bool
		wantListed bool
		wantLocked bool
	}{
		{"absent flags", nil, nil, true, false},
		{"explicit false listed", boolPtr(false), nil, false, false},
		{"explicit true locked", nil, boolPtr(true), true, true},
		{"explicit false locked", boolPtr(true), boolPtr(false), true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := remoteFixture()
			r.Listed = tc.listed
			r.IsLocked = tc.locked
			row := RowFromRemote(r)
			if row.Listed != tc.wantListed || row.IsLocked != tc.wantLocked {
				t.Errorf("listed=%v locked=%v, want %v %v", row.Listed, row.IsLocked, tc.wantListed, tc.wantLocked)
			}
		})
	}
}

func TestRowFromRemoteColumns(t *testing.T) {
	row := RowFromRemote(remoteFixture())

	if row.EventbriteID != "1001" || row.Name != "Founder Breakfast" || row.OrganizerName != "Austin Founders" {
		t.Fatalf("unexpected identity columns: %+v", row)
	}
	if deref(row.VenueAddress) != "701 Brazos St, Austin, TX" || deref(row.VenueCity) != "Austin" {
		t.Errorf("venue columns not flattened: %+v", row)
	}
	if deref(row.Summary) != "Long form body" || deref(row.LogoURL) == "" {
		t.Errorf("summary/logo missing: %+v", row)
	}
	if err := row.Validate(); err != nil {
		t.Errorf("valid row failed validation: %v", err)
	}
}

func TestRowWithoutVenueOrLogo(t *testing.T) {
	r := remoteFixture()
	r.Venue = nil
	r.Logo = nil
	r.OnlineEvent = true
	row := RowFromRemote(r)

	if row.VenueName != nil || row.VenueCity != nil || row.LogoURL != nil {
		t.Fatalf("absent venue/logo must be null: %+v", row)
	}
	e := EventFromRow(row)
	if e.Venue != nil || e.Logo != nil {
		t.Errorf("absent venue/logo must stay nil after read: %+v", e)
	}
}

func TestEventRowRoundTrip(t *testing.T) {
	row := RowFromRemote(remoteFixture())
	back := RowFromEvent(EventFromRow(row))
	if !reflect.DeepEqual(row, back) {
		t.Errorf("round trip changed row:\n got %+v\nwant %+v", back, row)
	}
}

func TestDisplayable(t *testing.T) {
	now := time.Date(2025, 4, 2, 14, 0, 0, 0, time.UTC)
	e := FromRemote(remoteFixture())
	if !e.Displayable(now) {
		t.Fatal("ongoing live event should be displayable")
	}
	if e.Displayable(now.Add(2 * time.Hour)) {
		t.Error("event that ended should not be displayable")
	}
	e.IsLocked = true
	if e.Displayable(now) {
		t.Error("locked event should not be displayable")
	}
}

func TestDateTimeFallsBackToLocal(t *testing.T) {
	d := DateTime{Timezone: "America/Chicago", Local: "2025-04-02T08:00:00"}
	got, ok := d.Time()
	if !ok {
		t.Fatal("local time should parse")
	}
	if want := time.Date(2025, 4, 2, 13, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRowFromRemoteDerivesMissingUTC(t *testing.T) {
	r := remoteFixture()
	r.Start.UTC = ""
	r.End.UTC = ""
	row := RowFromRemote(r)

	if got := deref(row.StartUTC); got != "2025-04-02T13:00:00Z" {
		t.Errorf("start_utc = %q, want 2025-04-02T13:00:00Z", got)
	}
	if got := deref(row.EndUTC); got != "2025-04-02T15:00:00Z" {
		t.Errorf("end_utc = %q, want 2025-04-02T15:00:00Z", got)
	}

	r.End.Local = ""
	if row := RowFromRemote(r); row.EndUTC != nil {
		t.Errorf("end without any time must stay null, got %q", *row.EndUTC)
	}
}
