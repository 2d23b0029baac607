package utils

import (
	"errors"
	"reflect"
	"strings"

	appErrors "aspire-wishlist/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json field names rather than Go field names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return true
		}
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	_ = v.RegisterValidation("notcompromised", func(fl validator.FieldLevel) bool {
		return !IsCompromisedPassword(fl.Field().String())
	})

	return v
}

// ValidateStruct runs the struct's validate tags and returns the failures as
// field/code pairs. A nil result means the input is valid.
func ValidateStruct(s any) []appErrors.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []appErrors.FieldError{{Field: "_", Code: "invalid"}}
	}

	fields := make([]appErrors.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, appErrors.FieldError{
			Field: fe.Field(),
			Code:  codeForTag(fe.Tag()),
		})
	}
	return fields
}

// ValidateInput wraps ValidateStruct into a ValidationError.
func ValidateInput(s any) error {
	if fields := ValidateStruct(s); fields != nil {
		return appErrors.Validation(fields...)
	}
	return nil
}

func codeForTag(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "email":
		return "invalid_email"
	case "min":
		return "too_short"
	case "max":
		return "too_long"
	case "notblank":
		return "blank"
	case "notcompromised":
		return "compromised"
	case "url", "http_url":
		return "invalid_url"
	case "gte", "lte":
		return "out_of_range"
	default:
		return tag
	}
}
