package organization

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = gerrors.New("organization not found")
	ErrNameTaken = gerrors.New("organization name already taken")
)

type FindParams struct {
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Organization, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Organization, error)
	Create(ctx context.Context, o Organization) (Organization, error)
	Update(ctx context.Context, o Organization) error
	Delete(ctx context.Context, id uuid.UUID) error
}
