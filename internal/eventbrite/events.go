package eventbrite

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joshua-takyi/eventhub/internal/apperr"
	"github.com/joshua-takyi/eventhub/internal/models"
)

// maxPages bounds continuation paging for a single organizer.
const maxPages = 20

const rangeLayout = "2006-01-02T15:04:05Z"

type pagination struct {
	HasMoreItems bool   `json:"has_more_items"`
	Continuation string `json:"continuation"`
}

type eventsPage struct {
	Events     []models.RemoteEvent `json:"events"`
	Pagination pagination           `json:"pagination"`
}

// EventQuery builds the listing parameters: upcoming six months from now, oldest first,
// with venue and organizer expanded. An empty status leaves the status unfiltered.
func EventQuery(now time.Time, status string) url.Values {
	now = now.UTC()
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	q.Set("order_by", "start_asc")
	q.Set("start_date.range_start", now.Format(rangeLayout))
	q.Set("start_date.range_end", now.AddDate(0, 6, 0).Format(rangeLayout))
	q.Set("expand", "venue,organizer")
	return q
}

func organizationPath(id string) string {
	return "/organizations/" + url.PathEscape(id) + "/events/"
}

func organizerPath(id string) string {
	return "/organizers/" + url.PathEscape(id) + "/events/"
}

// OrganizerEvents lists an id's events through the organization endpoint, falling back to
// the organizer endpoint when the first is missing or fails. Both failing is an error.
func (c *Client) OrganizerEvents(ctx context.Context, id string, now time.Time) ([]models.RemoteEvent, error) {
	q := EventQuery(now, "")

	events, found, err := c.listEvents(ctx, organizationPath(id), q)
	if err == nil && found {
		return events, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	c.logger.Debug("Organization endpoint failed, trying organizer endpoint",
		"organizer_id", id,
		"error", err,
	)

	events, found, err = c.listEvents(ctx, organizerPath(id), q)
	if err != nil {
		return nil, fmt.Errorf("both endpoints failed for %s: %w", id, err)
	}
	if !found {
		return nil, &apperr.Error{
			Kind:    apperr.KindNotFound,
			Status:  404,
			Message: "Both endpoints failed",
			Detail:  "no organization or organizer with id " + id,
		}
	}
	return events, nil
}

// OrganizationEvents lists events from the organization endpoint only. A missing
// organization yields no events and no error.
func (c *Client) OrganizationEvents(ctx context.Context, id string, q url.Values) ([]models.RemoteEvent, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Status: 400, Message: "Organizer ID is required"}
	}
	events, _, err := c.listEvents(ctx, organizationPath(id), q)
	return events, err
}

func (c *Client) listEvents(ctx context.Context, path string, q url.Values) ([]models.RemoteEvent, bool, error) {
	var all []models.RemoteEvent
	query := url.Values{}
	for k, v := range q {
		query[k] = v
	}
	for page := 0; page < maxPages; page++ {
		var p eventsPage
		found, err := c.get(ctx, path, query, &p)
		if err != nil {
			return nil, false, err
		}
		if !found {
			return nil, page > 0, nil
		}
		all = append(all, p.Events...)
		if !p.Pagination.HasMoreItems || p.Pagination.Continuation == "" {
			break
		}
		query.Set("continuation", p.Pagination.Continuation)
	}
	if all == nil {
		all = []models.RemoteEvent{}
	}
	return all, true, nil
}

type structuredContent struct {
	Modules []struct {
		Type string `json:"type"`
		Data struct {
			Body *struct {
				Text string `json:"text"`
			} `json:"body"`
		} `json:"data"`
	} `json:"modules"`
}

// StructuredContent returns the event's long-form text: every text module's body,
// separated by blank lines. Missing content is "".
func (c *Client) StructuredContent(ctx context.Context, eventID string) (string, error) {
	var sc structuredContent
	if err := c.Get(ctx, "/events/"+url.PathEscape(eventID)+"/structured_content/", nil, &sc); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(sc.Modules))
	for _, m := range sc.Modules {
		if m.Type == "text" && m.Data.Body != nil && m.Data.Body.Text != "" {
			parts = append(parts, m.Data.Body.Text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
