package calendar

import (
	"time"

	"github.com/joshua-takyi/eventhub/internal/models"
)

const (
	dateLayout = "2006-01-02"
	// MonthCells is six full weeks, enough for any month at any week start.
	MonthCells = 42
)

// Day is one cell of a calendar grid. Padding cells belong to the neighbouring months
// and carry no events.
type Day struct {
	Date    string         `json:"date"`
	Weekday string         `json:"weekday"`
	Padding bool           `json:"padding"`
	Today   bool           `json:"today,omitempty"`
	Events  []models.Event `json:"events"`
}

// ParseWeekStart accepts "monday"; everything else means Sunday.
func ParseWeekStart(s string) time.Weekday {
	if s == "monday" || s == "mon" {
		return time.Monday
	}
	return time.Sunday
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// byLocalDate groups events by the date part of their local start.
func byLocalDate(events []models.Event) map[string][]models.Event {
	idx := make(map[string][]models.Event)
	for _, e := range events {
		if d := e.Start.LocalDate(); d != "" {
			idx[d] = append(idx[d], e)
		}
	}
	return idx
}

func leading(first time.Time, weekStart time.Weekday) int {
	return (int(first.Weekday()) - int(weekStart) + 7) % 7
}

func newDay(d time.Time, padding bool, today string, idx map[string][]models.Event) Day {
	key := d.Format(dateLayout)
	day := Day{
		Date:    key,
		Weekday: d.Weekday().String(),
		Padding: padding,
		Today:   key == today,
		Events:  []models.Event{},
	}
	if !padding && idx[key] != nil {
		day.Events = idx[key]
	}
	return day
}

// Month lays out the month containing cursor as a fixed six-week grid: padding days from
// the previous month up to the first day, every day of the month, then padding from the
// next month. today marks the matching cell and may be zero.
func Month(cursor time.Time, events []models.Event, weekStart time.Weekday, today time.Time) []Day {
	cursor = dateOnly(cursor)
	first := time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, time.UTC)
	idx := byLocalDate(events)
	todayKey := ""
	if !today.IsZero() {
		todayKey = dateOnly(today).Format(dateLayout)
	}

	days := make([]Day, 0, MonthCells)
	start := first.AddDate(0, 0, -leading(first, weekStart))
	for i := 0; i < MonthCells; i++ {
		d := start.AddDate(0, 0, i)
		days = append(days, newDay(d, d.Month() != first.Month(), todayKey, idx))
	}
	return days
}

// Week returns the seven days of the week containing cursor.
func Week(cursor time.Time, events []models.Event, weekStart time.Weekday, today time.Time) []Day {
	cursor = dateOnly(cursor)
	idx := byLocalDate(events)
	todayKey := ""
	if !today.IsZero() {
		todayKey = dateOnly(today).Format(dateLayout)
	}

	start := StartOfWeek(cursor, weekStart)
	days := make([]Day, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, newDay(start.AddDate(0, 0, i), false, todayKey, idx))
	}
	return days
}

func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	t = dateOnly(t)
	return t.AddDate(0, 0, -leading(t, weekStart))
}

// NextMonth and PrevMonth move to the first day of the adjacent month so that day
// overflow never skips a month.
func NextMonth(cursor time.Time) time.Time {
	return time.Date(cursor.Year(), cursor.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

func PrevMonth(cursor time.Time) time.Time {
	return time.Date(cursor.Year(), cursor.Month()-1, 1, 0, 0, 0, 0, time.UTC)
}

func NextWeek(cursor time.Time) time.Time {
	return dateOnly(cursor).AddDate(0, 0, 7)
}

func PrevWeek(cursor time.Time) time.Time {
	return dateOnly(cursor).AddDate(0, 0, -7)
}
