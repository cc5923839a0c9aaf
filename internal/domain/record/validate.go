package record

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ERPlora/module-training/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks struct tags on in and reports the first failure as a
// domain.ErrValidation naming the form field.
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	fe := ves[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", domain.ErrValidation, fe.Field())
	case "max":
		return fmt.Errorf("%w: %s must be at most %s characters", domain.ErrValidation, fe.Field(), fe.Param())
	case "gte":
		return fmt.Errorf("%w: %s must be at least %s", domain.ErrValidation, fe.Field(), fe.Param())
	case "uuid":
		return fmt.Errorf("%w: %s must be a valid identifier", domain.ErrValidation, fe.Field())
	default:
		return fmt.Errorf("%w: %s is invalid", domain.ErrValidation, fe.Field())
	}
}
