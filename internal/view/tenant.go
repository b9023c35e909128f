package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bryan-buckman/condominio/internal/calendar"
	"github.com/bryan-buckman/condominio/internal/database"
	"github.com/bryan-buckman/condominio/internal/model"
	"github.com/bryan-buckman/condominio/internal/validate"
)

// Empty state messages of the tenant section.
const (
	TenantNotFound = "No se encontró ningún inquilino con los datos ingresados."
	NoResults      = "Sin resultados"
)

// TenantResult is the outcome of a tenant lookup.
type TenantResult struct {
	Form     validate.TenantForm
	Invalid  *validate.Error
	Found    bool
	Tenant   model.Tenant
	Month    model.YearMonth
	DuesPaid bool
	Message  string
}

// TenantLookup validates the form, then looks up the tenant. Dues status
// for the month containing now is only checked when the tenant exists.
// A validation failure is reported in Invalid and no query runs.
func TenantLookup(ctx context.Context, q Queries, form validate.TenantForm, now time.Time) (TenantResult, error) {
	res := TenantResult{Form: form, Month: model.Of(now)}

	if err := validate.Struct(form); err != nil {
		if !errors.As(err, &res.Invalid) {
			return res, err
		}
		return res, nil
	}

	house, _ := strconv.Atoi(form.HouseNumber)
	tenant, found, err := q.FindTenant(ctx, database.TenantQuery{
		NationalID:       form.NationalID,
		HouseNumber:      house,
		FirstNamePattern: form.FirstName,
		LastNamePattern:  form.LastName,
		BirthDate:        form.BirthDate,
	})
	if err != nil {
		return res, fmt.Errorf("find tenant: %w", err)
	}
	if !found {
		res.Message = TenantNotFound
		return res, nil
	}
	res.Found = true
	res.Tenant = tenant

	paid, err := q.IsDuesPaidForCurrentMonth(ctx, tenant.HouseNumber, now)
	if err != nil {
		return res, fmt.Errorf("dues for house %d: %w", tenant.HouseNumber, err)
	}
	res.DuesPaid = paid
	if paid {
		res.Message = fmt.Sprintf("La cuota de %s está pagada.", MonthName(res.Month))
	} else {
		res.Message = fmt.Sprintf("La cuota de %s está pendiente.", MonthName(res.Month))
	}
	return res, nil
}

// HistoryResult is the outcome of a payment history search.
type HistoryResult struct {
	Form         validate.HistoryForm
	Invalid      *validate.Error
	Start        model.YearMonth
	End          model.YearMonth
	Rows         []model.DuesPayment
	EmptyMessage string
}

// PaymentHistory validates the form, then lists the payments of the house
// between the two months inclusive.
func PaymentHistory(ctx context.Context, q Queries, form validate.HistoryForm) (HistoryResult, error) {
	res := HistoryResult{Form: form}

	if err := validate.Struct(form); err != nil {
		if !errors.As(err, &res.Invalid) {
			return res, err
		}
		return res, nil
	}

	house, _ := strconv.Atoi(form.HouseNumber)
	res.Start, _ = calendar.ParseYearMonth(form.Start)
	res.End, _ = calendar.ParseYearMonth(form.End)

	rows, err := q.PaymentHistory(ctx, house, res.Start, res.End)
	if err != nil {
		return res, fmt.Errorf("payment history for house %d: %w", house, err)
	}
	res.Rows = rows
	if len(rows) == 0 {
		res.EmptyMessage = NoResults
	}
	return res, nil
}
