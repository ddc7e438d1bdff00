package service

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

func newValidator() *validator.Validate {
	v := validator.New()

	// report json names, as the gateway's clients know them
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// validate nullable values by their content; unset reads as nil
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if valuer, ok := field.Interface().(driver.Valuer); ok {
			if val, err := valuer.Value(); err == nil {
				return val
			}
		}
		return nil
	}, null.Int64{}, null.Float64{})

	return v
}

// check validates s and turns the first failure into guidance.
func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return guide(ErrInvalidInput, describe(fields[0]))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", fe.Field(), fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match.", fe.Field())
	case "email":
		return fmt.Sprintf("%s is not a valid email address.", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid.", fe.Field())
	}
}
