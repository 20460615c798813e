// Package validation runs struct-tag validation and reports failures as
// apierr.ValidationError keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"storefront/internal/apierr"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		mustRegister(v, "dmin", decimalMin)
		mustRegister(v, "dmax", decimalMax)
		mustRegister(v, "dscale", decimalScale)
		mustRegister(v, "notblank", notBlank)
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Struct validates s. It returns nil or a *apierr.ValidationError.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &apierr.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = Message(fe)
	}
	return out
}

// Message renders a single field failure for display next to the field.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank", "required_with":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return "must be a valid URL"
	case "dmin":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "dmax":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "dscale":
		return fmt.Sprintf("must have at most %s decimal places", fe.Param())
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

func decimalOf(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	return d, ok
}

func decimalMin(fl validator.FieldLevel) bool {
	d, ok := decimalOf(fl)
	if !ok {
		return false
	}
	return d.GreaterThanOrEqual(decimal.RequireFromString(fl.Param()))
}

func decimalMax(fl validator.FieldLevel) bool {
	d, ok := decimalOf(fl)
	if !ok {
		return false
	}
	return d.LessThanOrEqual(decimal.RequireFromString(fl.Param()))
}

func decimalScale(fl validator.FieldLevel) bool {
	d, ok := decimalOf(fl)
	if !ok {
		return false
	}
	var places int32
	if _, err := fmt.Sscan(fl.Param(), &places); err != nil {
		return false
	}
	return d.Equal(d.Truncate(places))
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
