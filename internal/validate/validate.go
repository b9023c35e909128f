// Package validate checks user submitted forms before any query runs.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	dpiPattern    = regexp.MustCompile(`^\d{13}$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
	namePattern   = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ' -]{2,}$`)
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Error is a validation failure on a single form field.
type Error struct {
	Field   string // form field name
	Message string // user facing, Spanish
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		mustRegister(v, "dpi", func(fl validator.FieldLevel) bool {
			return dpiPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "casa", func(fl validator.FieldLevel) bool {
			return IsHouseNumber(fl.Field().String())
		})
		mustRegister(v, "nombre", func(fl validator.FieldLevel) bool {
			return namePattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "fecha", func(fl validator.FieldLevel) bool {
			return datePattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "mes", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("2006-01", fl.Field().String())
			return err == nil
		})
		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: register %q: %v", tag, err))
	}
}

// IsHouseNumber reports whether s is a positive decimal integer.
func IsHouseNumber(s string) bool {
	if !digitsPattern.MatchString(s) {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n > 0
}

// Struct validates a form and returns the first failing field, in field
// order, as an *Error.
func Struct(form any) error {
	err := get().Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &Error{Field: fe.Field(), Message: message(fe.Field())}
}

var messages = map[string]string{
	"dpi":        "El DPI debe tener exactamente 13 dígitos.",
	"casa":       "El número de casa debe ser un entero positivo.",
	"nombre":     "El nombre debe tener al menos 2 letras; solo se permiten letras, espacios, apóstrofos y guiones.",
	"apellido":   "El apellido debe tener al menos 2 letras; solo se permiten letras, espacios, apóstrofos y guiones.",
	"nacimiento": "La fecha de nacimiento debe tener el formato AAAA-MM-DD.",
	"desde":      "El mes inicial debe tener el formato AAAA-MM.",
	"hasta":      "El mes final debe tener el formato AAAA-MM.",
}

func message(field string) string {
	if m, ok := messages[field]; ok {
		return m
	}
	return fmt.Sprintf("El campo %s no es válido.", field)
}
