package task

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/address"
	"github.com/courierdesk/courierdesk/pkg/constants"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

type CreateDTO struct {
	Type                 string           `json:"type" validate:"required,oneof=RETIRE DELIVER"`
	ReferenceNumber      string           `json:"referenceNumber"`
	ClientID             string           `json:"clientId"`
	ProviderID           string           `json:"providerId"`
	CourierID            string           `json:"courierId"`
	Priority             string           `json:"priority" validate:"omitempty,oneof=NORMAL URGENT"`
	ScheduledDate        *time.Time       `json:"scheduledDate"`
	Notes                string           `json:"notes"`
	MBL                  string           `json:"mbl"`
	HBL                  string           `json:"hbl"`
	OriginCertificate    bool             `json:"originCertificate"`
	InsuranceCertificate bool             `json:"insuranceCertificate"`
	CustomsCertificate   bool             `json:"customsCertificate"`
	LinkedTaskID         string           `json:"linkedTaskId"`
	PhotoRequired        bool             `json:"photoRequired"`
	OrganizationID       string           `json:"organizationId"`
	AddressOverride      *address.Payload `json:"addressOverride"`
}

func (d *CreateDTO) Normalize() {
	d.Type = strings.ToUpper(strings.TrimSpace(d.Type))
	d.ReferenceNumber = strings.TrimSpace(d.ReferenceNumber)
	d.Priority = strings.ToUpper(strings.TrimSpace(d.Priority))
	d.Notes = strings.TrimSpace(d.Notes)
	d.MBL = strings.TrimSpace(d.MBL)
	d.HBL = strings.TrimSpace(d.HBL)
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

// UpdateDTO is sparse: nil leaves the stored value untouched. Clearing an
// optional association is expressed with an explicit empty string.
type UpdateDTO struct {
	Type                 *string          `json:"type" validate:"omitempty,oneof=RETIRE DELIVER"`
	ReferenceNumber      *string          `json:"referenceNumber"`
	ClientID             *string          `json:"clientId"`
	ProviderID           *string          `json:"providerId"`
	CourierID            *string          `json:"courierId"`
	Status               *string          `json:"status" validate:"omitempty,oneof=PENDING PENDING_CONFIRMATION CONFIRMED COMPLETED CANCELLED"`
	Priority             *string          `json:"priority" validate:"omitempty,oneof=NORMAL URGENT"`
	ScheduledDate        *time.Time       `json:"scheduledDate"`
	Notes                *string          `json:"notes"`
	MBL                  *string          `json:"mbl"`
	HBL                  *string          `json:"hbl"`
	OriginCertificate    *bool            `json:"originCertificate"`
	InsuranceCertificate *bool            `json:"insuranceCertificate"`
	CustomsCertificate   *bool            `json:"customsCertificate"`
	LinkedTaskID         *string          `json:"linkedTaskId"`
	PhotoRequired        *bool            `json:"photoRequired"`
	AddressOverride      *address.Payload `json:"addressOverride"`
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
