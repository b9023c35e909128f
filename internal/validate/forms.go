package validate

import (
	"net/url"
	"strings"
)

// TenantForm is the tenant self-service lookup form.
type TenantForm struct {
	NationalID  string `form:"dpi" validate:"required,dpi"`
	HouseNumber string `form:"casa" validate:"required,casa"`
	FirstName   string `form:"nombre" validate:"required,nombre"`
	LastName    string `form:"apellido" validate:"required,nombre"`
	BirthDate   string `form:"nacimiento" validate:"required,fecha"`
}

// HistoryForm is the payment history search form.
type HistoryForm struct {
	HouseNumber string `form:"casa" validate:"required,casa"`
	Start       string `form:"desde" validate:"required,mes"`
	End         string `form:"hasta" validate:"required,mes"`
}

// TenantFormFrom reads a TenantForm from submitted values.
func TenantFormFrom(v url.Values) TenantForm {
	return TenantForm{
		NationalID:  field(v, "dpi"),
		HouseNumber: field(v, "casa"),
		FirstName:   field(v, "nombre"),
		LastName:    field(v, "apellido"),
		BirthDate:   field(v, "nacimiento"),
	}
}

// HistoryFormFrom reads a HistoryForm from submitted values.
func HistoryFormFrom(v url.Values) HistoryForm {
	return HistoryForm{
		HouseNumber: field(v, "casa"),
		Start:       field(v, "desde"),
		End:         field(v, "hasta"),
	}
}

func field(v url.Values, name string) string {
	return strings.TrimSpace(v.Get(name))
}
