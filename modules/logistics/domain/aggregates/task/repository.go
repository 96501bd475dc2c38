package task

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	// OrganizationID narrows the listing to one tenant; nil is reserved
	// for superadmin callers.
	OrganizationID *uuid.UUID
	Status         *Status
	CourierID      *uuid.UUID
	Search         string
	Limit          int
	Offset         int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Task, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Task, error)
	// GetByReference looks a reference number up within one tenant;
	// reference numbers are only unique per organization.
	GetByReference(ctx context.Context, organizationID uuid.UUID, reference string) (Task, error)
	Create(ctx context.Context, t Task) (Task, error)
	Update(ctx context.Context, t Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}
