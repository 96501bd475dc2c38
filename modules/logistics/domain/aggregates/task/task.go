package task

import (
	"fmt"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/address"
)

var (
	ErrNotFound       = gerrors.New("task not found")
	ErrReferenceTaken = gerrors.New("reference number already taken in organization")
	ErrPartyExclusive = gerrors.New("task may name a client or a provider, not both")
)

type Type string

const (
	TypeRetire  Type = "RETIRE"
	TypeDeliver Type = "DELIVER"
)

func ParseType(s string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeRetire:
		return TypeRetire, nil
	case TypeDeliver:
		return TypeDeliver, nil
	default:
		return "", fmt.Errorf("unknown task type: %q", s)
	}
}

type Status string

// Status is a closed enumeration. Transition legality is deliberately not
// enforced: any status may follow any other, and every change is recorded in
// the task history.
const (
	StatusPending             Status = "PENDING"
	StatusPendingConfirmation Status = "PENDING_CONFIRMATION"
	StatusConfirmed           Status = "CONFIRMED"
	StatusCompleted           Status = "COMPLETED"
	StatusCancelled           Status = "CANCELLED"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusPendingConfirmation:
		return StatusPendingConfirmation, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", fmt.Errorf("unknown task status: %q", s)
	}
}

type Priority string

const (
	PriorityNormal Priority = "NORMAL"
	PriorityUrgent Priority = "URGENT"
)

func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToUpper(strings.TrimSpace(s))) {
	case PriorityNormal:
		return PriorityNormal, nil
	case PriorityUrgent:
		return PriorityUrgent, nil
	default:
		return "", fmt.Errorf("unknown task priority: %q", s)
	}
}

type Task struct {
	ID                   uuid.UUID  `json:"id"`
	OrganizationID       uuid.UUID  `json:"organizationId"`
	Type                 Type       `json:"type"`
	ReferenceNumber      *string    `json:"referenceNumber,omitempty"`
	ClientID             *uuid.UUID `json:"clientId,omitempty"`
	ProviderID           *uuid.UUID `json:"providerId,omitempty"`
	AddressOverrideID    *uuid.UUID `json:"addressOverrideId,omitempty"`
	CourierID            *uuid.UUID `json:"courierId,omitempty"`
	Status               Status     `json:"status"`
	Priority             Priority   `json:"priority"`
	ScheduledDate        *time.Time `json:"scheduledDate,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
	MBL                  *string    `json:"mbl,omitempty"`
	HBL                  *string    `json:"hbl,omitempty"`
	OriginCertificate    bool       `json:"originCertificate"`
	InsuranceCertificate bool       `json:"insuranceCertificate"`
	CustomsCertificate   bool       `json:"customsCertificate"`
	LinkedTaskID         *uuid.UUID `json:"linkedTaskId,omitempty"`
	ReceiptPhotoURL      *string    `json:"receiptPhotoUrl,omitempty"`
	PhotoRequired        bool       `json:"photoRequired"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// PartyExclusive reports whether the client/provider exclusivity invariant
// holds: a task names at most one contact party.
func (t Task) PartyExclusive() bool {
	return t.ClientID == nil || t.ProviderID == nil
}

// View is a task together with its effective address per the resolution
// precedence: override first, then client, then provider, else none.
type View struct {
	Task
	Address *address.Address `json:"address,omitempty"`
}
