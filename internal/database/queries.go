package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bryan-buckman/condominio/internal/model"
)

// DefaultNewsLimit is how many news items the news view shows.
const DefaultNewsLimit = 3

// --- News ---

// LatestNews returns the most recent news items, newest first.
func (db *DB) LatestNews(ctx context.Context, limit int) ([]model.NewsItem, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT Fecha, Texto FROM Noticias ORDER BY Fecha DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	var items []model.NewsItem
	for rows.Next() {
		var date string
		var it model.NewsItem
		if err := rows.Scan(&date, &it.Text); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		if it.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// --- Calendar ---

// ListEventsForMonth returns the events dated within ym, ordered by date then title.
func (db *DB) ListEventsForMonth(ctx context.Context, ym model.YearMonth) ([]model.CalendarEvent, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT Fecha, Titulo, Descripcion FROM Calendario
		WHERE substr(Fecha, 1, 7) = ?
		ORDER BY Fecha, Titulo`, ym.String())
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.CalendarEvent
	for rows.Next() {
		var date string
		var desc sql.NullString
		var ev model.CalendarEvent
		if err := rows.Scan(&date, &ev.Title, &desc); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if ev.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		if desc.Valid {
			ev.Description = desc.String
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// EventsForMonth groups the events of ym by day of month.
func (db *DB) EventsForMonth(ctx context.Context, ym model.YearMonth) (map[int][]model.CalendarEvent, error) {
	events, err := db.ListEventsForMonth(ctx, ym)
	if err != nil {
		return nil, err
	}
	byDay := make(map[int][]model.CalendarEvent)
	for _, ev := range events {
		byDay[ev.Date.Day()] = append(byDay[ev.Date.Day()], ev)
	}
	return byDay, nil
}

// --- Tenants ---

// FindTenant looks up the tenant matching every credential field. Name
// fields are matched with LIKE, the rest with equality. found is false
// when no row matches.
func (db *DB) FindTenant(ctx context.Context, q TenantQuery) (model.Tenant, bool, error) {
	var t model.Tenant
	var birth string
	err := db.conn.QueryRowContext(ctx, `
		SELECT DPI, PrimerNombre, PrimerApellido, FechaNacimiento, NumeroCasa FROM Inquilinos
		WHERE DPI = ? AND NumeroCasa = ? AND PrimerNombre LIKE ? AND PrimerApellido LIKE ? AND FechaNacimiento = ?
		LIMIT 1`,
		q.NationalID, q.HouseNumber, q.FirstNamePattern, q.LastNamePattern, q.BirthDate,
	).Scan(&t.NationalID, &t.FirstName, &t.LastName, &birth, &t.HouseNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tenant{}, false, nil
	}
	if err != nil {
		return model.Tenant{}, false, fmt.Errorf("query tenant: %w", err)
	}
	if t.BirthDate, err = parseDate(birth); err != nil {
		return model.Tenant{}, false, err
	}
	return t, true, nil
}

// --- Dues ---

// IsDuesPaid reports whether the house has a payment row for ym.
func (db *DB) IsDuesPaid(ctx context.Context, houseNumber int, ym model.YearMonth) (bool, error) {
	var paid bool
	err := db.conn.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM PagoDeCuotas WHERE NumeroCasa = ? AND Anio = ? AND Mes = ?)",
		houseNumber, ym.Year, ym.Month,
	).Scan(&paid)
	if err != nil {
		return false, fmt.Errorf("query dues: %w", err)
	}
	return paid, nil
}

// IsDuesPaidForCurrentMonth reports whether the house paid for the month containing now.
func (db *DB) IsDuesPaidForCurrentMonth(ctx context.Context, houseNumber int, now time.Time) (bool, error) {
	return db.IsDuesPaid(ctx, houseNumber, model.Of(now))
}

// PaymentHistory returns the house's payments between start and end
// inclusive, oldest first. A start after end yields no rows.
func (db *DB) PaymentHistory(ctx context.Context, houseNumber int, start, end model.YearMonth) ([]model.DuesPayment, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT NumeroCasa, Anio, Mes, FechaPago FROM PagoDeCuotas
		WHERE NumeroCasa = ? AND (Anio * 100 + Mes) BETWEEN ? AND ?
		ORDER BY Anio, Mes`, houseNumber, start.Key(), end.Key())
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []model.DuesPayment
	for rows.Next() {
		var paid string
		var p model.DuesPayment
		if err := rows.Scan(&p.HouseNumber, &p.Year, &p.Month, &paid); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		if p.PaidDate, err = parseDate(paid); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// --- Stats ---

// Stats counts the rows of each table.
func (db *DB) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM Noticias),
			(SELECT count(*) FROM Calendario),
			(SELECT count(*) FROM Inquilinos),
			(SELECT count(*) FROM PagoDeCuotas)`,
	).Scan(&s.News, &s.Events, &s.Tenants, &s.Payments)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return s, nil
}
