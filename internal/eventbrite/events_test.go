package eventbrite

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/joshua-takyi/eventhub/internal/apperr"
)

func TestEventQuery(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 30, 45, 123000000, time.UTC)
	q := EventQuery(now, "")

	if q.Get("start_date.range_start") != "2025-01-15T10:30:45Z" {
		t.Errorf("range_start = %q", q.Get("start_date.range_start"))
	}
	if q.Get("start_date.range_end") != "2025-07-15T10:30:45Z" {
		t.Errorf("range_end = %q", q.Get("start_date.range_end"))
	}
	if q.Get("order_by") != "start_asc" || q.Get("expand") != "venue,organizer" {
		t.Errorf("unexpected query %v", q)
	}
	if q.Has("status") {
		t.Error("status should only be set when asked for")
	}
}

func TestOrganizerEventsFallsBackToOrganizerEndpoint(t *testing.T) {
	var paths []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.HasPrefix(r.URL.Path, "/organizations/") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"events":[{"id":"e1","name":{"text":"Demo Day"},"status":"live"}]}`)
	})

	events, err := c.OrganizerEvents(context.Background(), "42", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].ID != "e1" {
		t.Fatalf("events = %+v", events)
	}
	if len(paths) != 2 || paths[0] != "/organizations/42/events/" || paths[1] != "/organizers/42/events/" {
		t.Errorf("paths = %v", paths)
	}
}

func TestOrganizerEventsBothEndpointsFail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.OrganizerEvents(context.Background(), "42", time.Now())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestOrganizerEventsFollowsContinuation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("continuation") == "" {
			fmt.Fprint(w, `{"events":[{"id":"a"}],"pagination":{"has_more_items":true,"continuation":"tok"}}`)
			return
		}
		fmt.Fprint(w, `{"events":[{"id":"b"}],"pagination":{"has_more_items":false}}`)
	})

	events, err := c.OrganizerEvents(context.Background(), "7", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[1].ID != "b" {
		t.Errorf("events = %+v", events)
	}
}

func TestStructuredContentJoinsTextModules(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/e1/structured_content/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"modules":[
			{"type":"text","data":{"body":{"text":"First part"}}},
			{"type":"image","data":{"image":{"url":"x"}}},
			{"type":"text","data":{"body":{"text":"Second part"}}}
		]}`)
	})

	text, err := c.StructuredContent(context.Background(), "e1")
	if err != nil {
		t.Fatal(err)
	}
	if text != "First part\n\nSecond part" {
		t.Errorf("text = %q", text)
	}

	missing, err := c.StructuredContent(context.Background(), "nope")
	if err != nil || missing != "" {
		t.Errorf("missing content = %q, %v", missing, err)
	}
}
