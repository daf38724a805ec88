package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags and returns a VALIDATION_FAILED error listing each bad field.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.NewBadRequest("invalid payload")
	}

	fields := make(map[string]any, len(validationErrors))
	for _, fieldErr := range validationErrors {
		field := fieldErr.Field()
		switch fieldErr.Tag() {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "email":
			fields[field] = fmt.Sprintf("%s must be a valid email", field)
		case "max":
			fields[field] = fmt.Sprintf("%s must be at most %s characters", field, fieldErr.Param())
		default:
			fields[field] = fmt.Sprintf("%s failed on '%s'", field, fieldErr.Tag())
		}
	}
	return apperrors.NewValidationError("request validation failed", fields)
}
