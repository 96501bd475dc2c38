package courier

import (
	"context"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/pkg/constants"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

var ErrNotFound = gerrors.New("courier not found")

// Courier may exist without a linked user: dispatch-only entries have no
// login of their own.
type Courier struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	UserID         *uuid.UUID `json:"userId,omitempty"`
	Name           string     `json:"name"`
	PhoneNumber    string     `json:"phoneNumber"`
	VehicleType    string     `json:"vehicleType,omitempty"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type CreateDTO struct {
	Name           string `json:"name" validate:"required"`
	PhoneNumber    string `json:"phoneNumber" validate:"required"`
	VehicleType    string `json:"vehicleType"`
	UserID         string `json:"userId"`
	OrganizationID string `json:"organizationId"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
	d.VehicleType = strings.TrimSpace(d.VehicleType)
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

type UpdateDTO struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phoneNumber"`
	VehicleType *string `json:"vehicleType"`
	UserID      *string `json:"userId"`
	IsActive    *bool   `json:"isActive"`
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

type FindParams struct {
	OrganizationID *uuid.UUID
	Search         string
	Limit          int
	Offset         int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Courier, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Courier, error)
	Create(ctx context.Context, c Courier) (Courier, error)
	Update(ctx context.Context, c Courier) error
	Delete(ctx context.Context, id uuid.UUID) error
}
