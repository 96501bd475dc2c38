package taskhistory

import (
	"context"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

var ErrNotFound = gerrors.New("task history entry not found")

// Entry is one append-only audit record of a task status change. Entries are
// never mutated by business logic; administrative cleanup is the only delete.
type Entry struct {
	ID             uuid.UUID  `json:"id"`
	TaskID         uuid.UUID  `json:"taskId"`
	PreviousStatus *string    `json:"previousStatus,omitempty"`
	NewStatus      *string    `json:"newStatus,omitempty"`
	ChangedBy      *uuid.UUID `json:"changedBy,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type Repository interface {
	GetByTask(ctx context.Context, taskID uuid.UUID) ([]Entry, error)
	Create(ctx context.Context, e Entry) (Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
