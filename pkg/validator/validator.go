package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// Report fields by their JSON name so messages match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})

	v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		return IsValidDate(fl.Field().String())
	})

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errs[field] = field + " is required"
			case "email":
				errs[field] = field + " must be a valid email address"
			case "phone":
				errs[field] = field + " must be a valid 10-digit phone number"
			case "date":
				errs[field] = field + " must be a date in YYYY-MM-DD format"
			case "min":
				errs[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errs[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errs[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errs[field] = field + " must be less than or equal to " + e.Param()
			case "gtfield", "gtefield":
				errs[field] = field + " must not be before " + e.Param()
			default:
				errs[field] = field + " is invalid"
			}
		}
	}

	return errs
}
