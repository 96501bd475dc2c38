package provider

import (
	"context"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/address"
	"github.com/courierdesk/courierdesk/pkg/constants"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

var (
	ErrNotFound  = gerrors.New("provider not found")
	ErrNameTaken = gerrors.New("provider name already taken in organization")
)

type Provider struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	Name           string     `json:"name"`
	AddressID      *uuid.UUID `json:"addressId,omitempty"`
	ContactName    string     `json:"contactName,omitempty"`
	Email          string     `json:"email,omitempty"`
	PhoneNumber    string     `json:"phoneNumber,omitempty"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type View struct {
	Provider
	Address *address.Address `json:"address,omitempty"`
}

type CreateDTO struct {
	Name           string           `json:"name" validate:"required"`
	ContactName    string           `json:"contactName"`
	Email          string           `json:"email" validate:"omitempty,email"`
	PhoneNumber    string           `json:"phoneNumber"`
	OrganizationID string           `json:"organizationId"`
	Address        *address.Payload `json:"address"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.ContactName = strings.TrimSpace(d.ContactName)
	d.Email = strings.TrimSpace(d.Email)
	d.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
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
	Name        *string          `json:"name"`
	ContactName *string          `json:"contactName"`
	Email       *string          `json:"email" validate:"omitempty,email"`
	PhoneNumber *string          `json:"phoneNumber"`
	IsActive    *bool            `json:"isActive"`
	Address     *address.Payload `json:"address"`
}

func (d *UpdateDTO) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(d.Name)
	trim(d.ContactName)
	trim(d.Email)
	trim(d.PhoneNumber)
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
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
	GetPaginated(ctx context.Context, params *FindParams) ([]Provider, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Provider, error)
	GetByName(ctx context.Context, organizationID uuid.UUID, name string) (Provider, error)
	Create(ctx context.Context, p Provider) (Provider, error)
	Update(ctx context.Context, p Provider) error
	Delete(ctx context.Context, id uuid.UUID) error
}
