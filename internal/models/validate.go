package models

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"freelance-crm/internal/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so messages match what API callers sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("expense_category", func(fl validator.FieldLevel) bool {
		return IsExpenseCategory(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		switch f := fl.Field(); f.Kind() {
		case reflect.Float32, reflect.Float64:
			return !math.IsInf(f.Float(), 0) && !math.IsNaN(f.Float())
		}
		return true
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks v against its struct tags and returns an apperrors validation
// error describing the first failing field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperrors.Validation(describe(fieldErrs[0]))
	}
	return apperrors.Validation(err.Error())
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must not be empty", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "finite":
		return fmt.Sprintf("%s must be a finite number", field)
	case "expense_category":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(ExpenseCategories, ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
