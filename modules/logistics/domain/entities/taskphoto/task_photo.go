package taskphoto

import (
	"context"
	"fmt"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

var ErrNotFound = gerrors.New("task photo not found")

type PhotoType string

const (
	TypeAdditional PhotoType = "ADDITIONAL"
	TypeReceipt    PhotoType = "RECEIPT"
	TypeOther      PhotoType = "OTHER"
)

func ParsePhotoType(s string) (PhotoType, error) {
	switch PhotoType(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeAdditional:
		return TypeAdditional, nil
	case TypeReceipt:
		return TypeReceipt, nil
	case TypeOther:
		return TypeOther, nil
	default:
		return "", fmt.Errorf("unknown photo type: %q", s)
	}
}

// TaskPhoto is any non-receipt photo attached to a task. The receipt photo
// is special-cased onto the task row itself.
type TaskPhoto struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"taskId"`
	PhotoURL  string    `json:"photoUrl"`
	PhotoType PhotoType `json:"photoType"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository interface {
	GetByTask(ctx context.Context, taskID uuid.UUID) ([]TaskPhoto, error)
	GetByID(ctx context.Context, id uuid.UUID) (TaskPhoto, error)
	Create(ctx context.Context, p TaskPhoto) (TaskPhoto, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
