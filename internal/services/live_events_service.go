package services

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshua-takyi/eventhub/internal/apperr"
	"github.com/joshua-takyi/eventhub/internal/cache"
	"github.com/joshua-takyi/eventhub/internal/clock"
	"github.com/joshua-takyi/eventhub/internal/eventbrite"
	"github.com/joshua-takyi/eventhub/internal/models"
)

// LiveSource reads one organization's events straight from the remote API.
type LiveSource interface {
	OrganizationEvents(ctx context.Context, id string, q url.Values) ([]models.RemoteEvent, error)
	StructuredContent(ctx context.Context, eventID string) (string, error)
}

type LiveEventsService struct {
	source LiveSource
	cache  *cache.Cache[[]models.Event]
	clock  clock.Clock
	logger *slog.Logger
}

func NewLiveEventsService(source LiveSource, c *cache.Cache[[]models.Event], clk clock.Clock, logger *slog.Logger) *LiveEventsService {
	return &LiveEventsService{source: source, cache: c, clock: clk, logger: logger}
}

// OrganizationEvents returns an organization's published live events sorted by start, with
// the description replaced by the structured content when there is any. Results are cached
// per organization; a failed refresh serves the previous result.
func (s *LiveEventsService) OrganizationEvents(ctx context.Context, id string) ([]models.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.New(apperr.KindValidation, "Organizer ID is required")
	}
	return s.cache.GetOrFetch(ctx, "live-events:"+id, func(ctx context.Context) ([]models.Event, error) {
		return s.load(ctx, id)
	})
}

func (s *LiveEventsService) load(ctx context.Context, id string) ([]models.Event, error) {
	remote, err := s.source.OrganizationEvents(ctx, id, eventbrite.EventQuery(s.clock.Now(), models.StatusLive))
	if err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(remote))
	for _, r := range remote {
		if e := models.FromRemote(r); e.Published() {
			events = append(events, e)
		}
	}

	var g errgroup.Group
	for i := range events {
		i := i // per-iteration copy; go.mod targets go1.21 loop semantics
		g.Go(func() error {
			text, err := s.source.StructuredContent(ctx, events[i].ID)
			if err != nil {
				s.logger.Debug("Structured content unavailable", "event_id", events[i].ID, "error", err)
				return nil
			}
			if text != "" {
				events[i].Description = text
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(events, func(i, j int) bool {
		return startOf(events[i]).Before(startOf(events[j]))
	})
	return events, nil
}

func startOf(e models.Event) time.Time {
	t, _ := e.Start.Time()
	return t
}
