package view

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bryan-buckman/condominio/internal/calendar"
	"github.com/bryan-buckman/condominio/internal/model"
)

// NoEvents is shown under a month without events.
const NoEvents = "No hay eventos este mes"

// Indicator marks one event inside a day cell.
type Indicator struct {
	Title string
	Ref   string // YYYY-MM-DD#index, opens the detail view
}

// DayCell is a rendered grid slot.
type DayCell struct {
	Day    int
	Blank  bool
	Events []Indicator
}

// CalendarPage is the data behind the calendar section.
type CalendarPage struct {
	Month        model.YearMonth
	Title        string
	Prev         model.YearMonth
	Next         model.YearMonth
	Weekdays     []string
	Weeks        [][]DayCell
	EventCount   int
	EmptyMessage string
	Selected     *model.CalendarEvent
}

// EventRef builds the reference of the index-th event on date.
func EventRef(date time.Time, index int) string {
	return fmt.Sprintf("%s#%d", date.Format(model.DateLayout), index)
}

// Calendar renders the grid of ym with an indicator per event. selected,
// when it names an event of this month, fills the detail view.
func Calendar(ctx context.Context, q Queries, ym model.YearMonth, selected string) (CalendarPage, error) {
	grid := calendar.BuildGrid(ym.Year, ym.Month)
	ym = grid.Month

	byDay, err := q.EventsForMonth(ctx, ym)
	if err != nil {
		return CalendarPage{}, fmt.Errorf("events for %s: %w", ym, err)
	}

	page := CalendarPage{
		Month:    ym,
		Title:    MonthName(ym),
		Prev:     calendar.Prev(ym),
		Next:     calendar.Next(ym),
		Weekdays: Weekdays,
	}

	for _, week := range grid.Weeks() {
		row := make([]DayCell, 0, len(week))
		for _, c := range week {
			cell := DayCell{Day: c.Day, Blank: c.Blank()}
			if !cell.Blank {
				for i, ev := range byDay[c.Day] {
					cell.Events = append(cell.Events, Indicator{Title: ev.Title, Ref: EventRef(ev.Date, i)})
				}
				page.EventCount += len(cell.Events)
			}
			row = append(row, cell)
		}
		page.Weeks = append(page.Weeks, row)
	}
	if page.EventCount == 0 {
		page.EmptyMessage = NoEvents
	}

	if date, idx, ok := parseRef(selected); ok && model.Of(date) == ym {
		if evs := byDay[date.Day()]; idx < len(evs) {
			ev := evs[idx]
			page.Selected = &ev
		}
	}
	return page, nil
}

func parseRef(ref string) (time.Time, int, bool) {
	day, index, ok := strings.Cut(ref, "#")
	if !ok {
		return time.Time{}, 0, false
	}
	date, err := time.Parse(model.DateLayout, day)
	if err != nil {
		return time.Time{}, 0, false
	}
	idx, err := strconv.Atoi(index)
	if err != nil || idx < 0 {
		return time.Time{}, 0, false
	}
	return date, idx, true
}
