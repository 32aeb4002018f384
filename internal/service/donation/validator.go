package donation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/reliefops/relief-api/internal/domain/models"
)

// Validator is a wrapper around go-playground/validator that reports
// failures as models.ErrInvalidArgument.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that names fields by their JSON key.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate validates a struct using validation tags.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

func (v *Validator) formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}

	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, describe(e))
	}
	return fmt.Errorf("%w: %s", models.ErrInvalidArgument, strings.Join(messages, "; "))
}

func describe(e validator.FieldError) string {
	switch {
	case e.Field() == "itemId":
		return "each item must have a valid itemId"
	case e.Tag() == "required" || e.Tag() == "required_without":
		return fmt.Sprintf("%s is required", e.Field())
	case e.Tag() == "min" && e.Kind() == reflect.Slice:
		return fmt.Sprintf("%s must not be empty", e.Field())
	case e.Tag() == "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
	case e.Tag() == "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param())
	case e.Tag() == "email":
		return fmt.Sprintf("%s must be a valid email", e.Field())
	default:
		return fmt.Sprintf("field '%s' failed validation: %s", e.Namespace(), e.Tag())
	}
}
