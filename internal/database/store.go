package database

import (
	"context"
	"time"

	"github.com/bryan-buckman/condominio/internal/model"
)

// Store defines the read operations the views run against a database image.
// Every method is read-only.
type Store interface {
	// News
	LatestNews(ctx context.Context, limit int) ([]model.NewsItem, error)

	// Calendar
	ListEventsForMonth(ctx context.Context, ym model.YearMonth) ([]model.CalendarEvent, error)
	EventsForMonth(ctx context.Context, ym model.YearMonth) (map[int][]model.CalendarEvent, error)

	// Tenants and dues
	FindTenant(ctx context.Context, q TenantQuery) (model.Tenant, bool, error)
	IsDuesPaid(ctx context.Context, houseNumber int, ym model.YearMonth) (bool, error)
	IsDuesPaidForCurrentMonth(ctx context.Context, houseNumber int, now time.Time) (bool, error)
	PaymentHistory(ctx context.Context, houseNumber int, start, end model.YearMonth) ([]model.DuesPayment, error)

	// Stats returns row counts per table.
	Stats(ctx context.Context) (Stats, error)
}

// Ensure DB implements Store interface.
var _ Store = (*DB)(nil)

// TenantQuery holds the credentials a tenant enters to look up their record.
type TenantQuery struct {
	NationalID       string
	HouseNumber      int
	FirstNamePattern string
	LastNamePattern  string
	BirthDate        string // YYYY-MM-DD
}

// Stats counts the rows of each table in the image.
type Stats struct {
	News     int64
	Events   int64
	Tenants  int64
	Payments int64
}
