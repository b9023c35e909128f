// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// DateLayout is how every date column is stored in the database image.
const DateLayout = "2006-01-02"

// NewsItem is a single community announcement.
type NewsItem struct {
	Date time.Time
	Text string
}

// CalendarEvent is an entry in the community calendar.
type CalendarEvent struct {
	Date        time.Time
	Title       string
	Description string // empty when the row has no description
}

// Tenant is a resident registered to a house.
type Tenant struct {
	NationalID  string // DPI, 13 digits
	FirstName   string
	LastName    string
	BirthDate   time.Time
	HouseNumber int
}

// DuesPayment records that a house paid its monthly dues.
type DuesPayment struct {
	HouseNumber int
	Year        int
	Month       int
	PaidDate    time.Time
}

// Period returns the month the payment covers.
func (p DuesPayment) Period() YearMonth {
	return YearMonth{Year: p.Year, Month: p.Month}
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month int
}

// Of returns the month containing t.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// Key is the sortable year*100+month form used by range queries.
func (ym YearMonth) Key() int {
	return ym.Year*100 + ym.Month
}

// String formats the month as YYYY-MM, the value of a month input.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	return ym.Key() < other.Key()
}
