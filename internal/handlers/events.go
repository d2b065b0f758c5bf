package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventhub/internal/apperr"
	"github.com/joshua-takyi/eventhub/internal/calendar"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/ics"
	"github.com/joshua-takyi/eventhub/internal/query"
	"github.com/joshua-takyi/eventhub/internal/services"
)

// queryValues collects a repeatable parameter, also accepting comma separated values.
// It returns nil when the parameter is absent so the facet stays unset.
func queryValues(c *gin.Context, key string) []string {
	raw, ok := c.GetQueryArray(key)
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if p := helpers.StringTrim(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func parseOptions(c *gin.Context) (query.Options, error) {
	opts := query.Options{
		OrganizationIDs: queryValues(c, "org"),
		Cities:          queryValues(c, "city"),
		Search:          c.Query("q"),
	}

	if raw := queryValues(c, "interest"); raw != nil {
		opts.InterestIDs = make([]int64, 0, len(raw))
		for _, v := range raw {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return opts, apperr.New(apperr.KindValidation, "invalid interest id: "+v)
			}
			opts.InterestIDs = append(opts.InterestIDs, id)
		}
	}

	if raw := queryValues(c, "type"); raw != nil {
		opts.Types = make([]query.EventType, 0, len(raw))
		for _, v := range raw {
			t := query.EventType(strings.ToLower(v))
			if t != query.Virtual && t != query.InPerson {
				return opts, apperr.New(apperr.KindValidation, "invalid event type: "+v)
			}
			opts.Types = append(opts.Types, t)
		}
	}
	return opts, nil
}

func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := parseOptions(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		result, err := es.Search(c.Request.Context(), opts)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, helpers.ListResponse(result.Events, result.Total, result.Facets))
	}
}

type CalendarView struct {
	View      string         `json:"view"`
	Date      string         `json:"date"`
	WeekStart string         `json:"week_start"`
	Prev      string         `json:"prev"`
	Next      string         `json:"next"`
	Days      []calendar.Day `json:"days"`
}

func CalendarEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := parseOptions(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		now := es.Now()
		cursor := now
		if d := c.Query("date"); d != "" {
			cursor, err = time.ParseInLocation("2006-01-02", d, es.Location())
			if err != nil {
				_ = c.Error(apperr.New(apperr.KindValidation, "date must be YYYY-MM-DD"))
				return
			}
		}
		weekStart := calendar.ParseWeekStart(strings.ToLower(c.Query("week_start")))

		result, err := es.Search(c.Request.Context(), opts)
		if err != nil {
			_ = c.Error(err)
			return
		}

		view := CalendarView{
			View:      c.DefaultQuery("view", "month"),
			Date:      cursor.Format("2006-01-02"),
			WeekStart: strings.ToLower(weekStart.String()),
		}
		switch view.View {
		case "month":
			view.Days = calendar.Month(cursor, result.Events, weekStart, now)
			view.Prev = calendar.PrevMonth(cursor).Format("2006-01-02")
			view.Next = calendar.NextMonth(cursor).Format("2006-01-02")
		case "week":
			view.Days = calendar.Week(cursor, result.Events, weekStart, now)
			view.Prev = calendar.PrevWeek(cursor).Format("2006-01-02")
			view.Next = calendar.NextWeek(cursor).Format("2006-01-02")
		default:
			_ = c.Error(apperr.New(apperr.KindValidation, "view must be month or week"))
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(view, ""))
	}
}

func ExportICS(es *services.EventService, calendarName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := parseOptions(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		result, err := es.Search(c.Request.Context(), opts)
		if err != nil {
			_ = c.Error(err)
			return
		}
		body := ics.Encode(result.Events, ics.Options{
			Name:     calendarName,
			Location: es.Location(),
			Stamp:    es.Now(),
		})
		c.Header("Content-Disposition", `attachment; filename="events.ics"`)
		c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
	}
}
