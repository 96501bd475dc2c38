package user

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/courierdesk/courierdesk/pkg/constants"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

type CreateDTO struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	Role           string `json:"role" validate:"required,oneof=SUPERADMIN ORGADMIN COURIER"`
	OrganizationID string `json:"organizationId"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = NormalizeEmail(d.Email)
	d.Role = strings.ToUpper(strings.TrimSpace(d.Role))
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		if validatorErrs, ok := err.(validator.ValidationErrors); ok {
			return serrors.ProcessValidatorErrors(validatorErrs), false
		}
		return serrors.ValidationErrors{"": err.Error()}, false
	}
	return serrors.ValidationErrors{}, true
}

// UpdateDTO applies sparse updates: a nil field leaves the stored value
// untouched.
type UpdateDTO struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role" validate:"omitempty,oneof=SUPERADMIN ORGADMIN COURIER"`
	IsActive *bool   `json:"isActive"`
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	if err := constants.Validate.Struct(d); err != nil {
		if validatorErrs, ok := err.(validator.ValidationErrors); ok {
			return serrors.ProcessValidatorErrors(validatorErrs), false
		}
		return serrors.ValidationErrors{"": err.Error()}, false
	}
	return serrors.ValidationErrors{}, true
}
