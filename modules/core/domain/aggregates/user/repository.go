package user

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = gerrors.New("user not found")
	ErrEmailTaken = gerrors.New("email already taken")
)

type FindParams struct {
	// OrganizationID narrows the listing to one tenant; nil lists across
	// all tenants and is reserved for superadmin callers.
	OrganizationID *uuid.UUID
	Search         string
	Limit          int
	Offset         int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]User, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
