// Package calendar lays out month grids and exports calendar events.
package calendar

import (
	"fmt"
	"time"

	"github.com/bryan-buckman/condominio/internal/model"
)

// Cell is one slot of the month grid. Day is 0 for a leading blank.
type Cell struct {
	Day int
}

// Blank reports whether the cell precedes the first day of the month.
func (c Cell) Blank() bool {
	return c.Day == 0
}

// Grid is the day layout of a single month.
type Grid struct {
	Month        model.YearMonth
	Cells        []Cell
	DaysInMonth  int
	StartWeekday int // 0=Sunday .. 6=Saturday
}

// BuildGrid computes the layout of the given month: one blank cell per
// weekday before the 1st, then days 1..N. The grid is not padded to full
// weeks, so its height depends on the month.
func BuildGrid(year, month int) Grid {
	ym := Normalize(year, month)
	first := time.Date(ym.Year, time.Month(ym.Month), 1, 12, 0, 0, 0, time.UTC)
	start := int(first.Weekday())
	// Day 0 of the next month is the last day of this one.
	days := time.Date(ym.Year, time.Month(ym.Month)+1, 0, 12, 0, 0, 0, time.UTC).Day()

	cells := make([]Cell, 0, start+days)
	for i := 0; i < start; i++ {
		cells = append(cells, Cell{})
	}
	for d := 1; d <= days; d++ {
		cells = append(cells, Cell{Day: d})
	}

	return Grid{
		Month:        ym,
		Cells:        cells,
		DaysInMonth:  days,
		StartWeekday: start,
	}
}

// Weeks splits the cells into rows of seven. The last row may be short.
func (g Grid) Weeks() [][]Cell {
	var weeks [][]Cell
	for i := 0; i < len(g.Cells); i += 7 {
		end := i + 7
		if end > len(g.Cells) {
			end = len(g.Cells)
		}
		weeks = append(weeks, g.Cells[i:end])
	}
	return weeks
}

// Normalize rolls an out-of-range month into the neighbouring year:
// month 0 is December of the previous year, month 13 January of the next.
func Normalize(year, month int) model.YearMonth {
	m := month - 1
	year += m / 12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	return model.YearMonth{Year: year, Month: m + 1}
}

// Prev returns the month before ym.
func Prev(ym model.YearMonth) model.YearMonth {
	return Normalize(ym.Year, ym.Month-1)
}

// Next returns the month after ym.
func Next(ym model.YearMonth) model.YearMonth {
	return Normalize(ym.Year, ym.Month+1)
}

// ParseYearMonth parses the YYYY-MM value of a month input.
func ParseYearMonth(s string) (model.YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return model.YearMonth{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return model.Of(t), nil
}
