package serrors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps a struct field name to a human readable message.
type ValidationErrors map[string]string

// ProcessValidatorErrors flattens go-playground validator errors into a
// field -> message map suitable for a JSON error envelope.
func ProcessValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = fmt.Sprintf("%s is required", fe.Field())
		case "email":
			out[fe.Field()] = fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "min":
			out[fe.Field()] = fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "oneof":
			out[fe.Field()] = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		default:
			out[fe.Field()] = fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	return out
}
