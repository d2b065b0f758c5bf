package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/joshua-takyi/eventhub/internal/models"
)

const uidDomain = "eventhub"

// Options control feed-level properties.
type Options struct {
	Name string
	// Location is used for events that carry neither a UTC time nor a timezone.
	Location *time.Location
	// Stamp is written as DTSTAMP on every event.
	Stamp time.Time
}

// Encode renders events as an iCalendar feed with one VEVENT each. Events whose start
// cannot be resolved are skipped.
func Encode(events []models.Event, opts Options) string {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//eventhub//events feed//EN")
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, e := range events {
		start, ok := resolve(e.Start, loc)
		if !ok {
			continue
		}
		end, ok := resolve(e.End, loc)
		if !ok || end.Before(start) {
			end = start
		}

		ev := cal.AddEvent(e.ID + "@" + uidDomain)
		ev.SetDtStampTime(stamp.UTC())
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(e.Name)
		if desc := description(e); desc != "" {
			ev.SetDescription(desc)
		}
		ev.SetLocation(location(e))
		if e.URL != "" {
			ev.SetURL(e.URL)
		}
	}
	return cal.Serialize()
}

func resolve(d models.DateTime, fallback *time.Location) (time.Time, bool) {
	if d.UTC != "" || d.Timezone != "" {
		return d.Time()
	}
	t, err := time.ParseInLocation(models.LocalLayout, d.Local, fallback)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func description(e models.Event) string {
	if e.Organizer.Name == "" {
		return e.Description
	}
	if e.Description == "" {
		return "Hosted by " + e.Organizer.Name
	}
	return e.Description + "\n\nHosted by " + e.Organizer.Name
}

func location(e models.Event) string {
	if e.OnlineEvent || e.Venue == nil {
		return "Online"
	}
	parts := []string{}
	if e.Venue.Name != "" {
		parts = append(parts, e.Venue.Name)
	}
	if addr := e.Venue.Address.LocalizedAddressDisplay; addr != "" {
		parts = append(parts, addr)
	} else if e.Venue.Address.City != "" {
		parts = append(parts, e.Venue.Address.City)
	}
	if len(parts) == 0 {
		return "Online"
	}
	return strings.Join(parts, ", ")
}
