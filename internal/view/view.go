// Package view turns query results and form input into page data.
//
// Renderers keep no state between calls; each one re-reads the database it
// is handed, so a replaced handle is picked up on the next request.
package view

import (
	"context"
	"fmt"
	"time"

	"github.com/bryan-buckman/condominio/internal/database"
	"github.com/bryan-buckman/condominio/internal/model"
)

// Queries is the read side the renderers need. *database.DB satisfies it.
type Queries interface {
	LatestNews(ctx context.Context, limit int) ([]model.NewsItem, error)
	EventsForMonth(ctx context.Context, ym model.YearMonth) (map[int][]model.CalendarEvent, error)
	FindTenant(ctx context.Context, q database.TenantQuery) (model.Tenant, bool, error)
	IsDuesPaidForCurrentMonth(ctx context.Context, houseNumber int, now time.Time) (bool, error)
	PaymentHistory(ctx context.Context, houseNumber int, start, end model.YearMonth) ([]model.DuesPayment, error)
}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Weekdays are the grid column headers, Sunday first.
var Weekdays = []string{"Dom", "Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"}

// MonthName returns the Spanish name of a month, e.g. "agosto 2025".
func MonthName(ym model.YearMonth) string {
	if ym.Month < 1 || ym.Month > 12 {
		return ym.String()
	}
	return fmt.Sprintf("%s %d", monthNames[ym.Month-1], ym.Year)
}

// FormatDate renders a date the way the database stores it.
func FormatDate(t time.Time) string {
	return t.Format(model.DateLayout)
}
