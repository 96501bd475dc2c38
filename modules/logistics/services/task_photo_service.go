package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/task"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/taskphoto"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/eventbus"
	"github.com/courierdesk/courierdesk/pkg/rbac"
	"github.com/courierdesk/courierdesk/pkg/serrors"
	"github.com/courierdesk/courierdesk/pkg/storage"
)

type TaskPhotoService struct {
	repo      taskphoto.Repository
	tasks     task.Repository
	store     storage.Storage
	publisher eventbus.EventBus
}

func NewTaskPhotoService(repo taskphoto.Repository, tasks task.Repository, store storage.Storage, publisher eventbus.EventBus) *TaskPhotoService {
	return &TaskPhotoService{repo: repo, tasks: tasks, store: store, publisher: publisher}
}

func (s *TaskPhotoService) GetByTask(ctx context.Context, taskID uuid.UUID) ([]taskphoto.TaskPhoto, error) {
	parent, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, mapTaskError(err)
	}
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceTaskPhoto, parent.OrganizationID, false); err != nil {
		return nil, err
	}
	photos, err := s.repo.GetByTask(ctx, taskID)
	if err != nil {
		return nil, mapTaskPhotoError(err)
	}
	return photos, nil
}

// Attach stores the image bytes and records the photo. The upload happens
// before the transaction; if the database write then fails the orphaned
// object is logged and left behind rather than failing the request twice.
func (s *TaskPhotoService) Attach(ctx context.Context, taskID uuid.UUID, photoType taskphoto.PhotoType, data []byte) (taskphoto.TaskPhoto, error) {
	parent, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return taskphoto.TaskPhoto{}, mapTaskError(err)
	}
	if err := authorize(ctx, rbac.ActionUpdate, rbac.ResourceTaskPhoto, parent.OrganizationID, false); err != nil {
		return taskphoto.TaskPhoto{}, err
	}

	_, ext, err := storage.DetectImage(data)
	if err != nil {
		return taskphoto.TaskPhoto{}, serrors.Validation("TASK_PHOTO_INVALID_IMAGE", err.Error())
	}

	photoID := uuid.New()
	key := fmt.Sprintf("task-%s-%s%s", taskID, photoID, ext)
	url, err := s.store.Put(ctx, key, data)
	if err != nil {
		return taskphoto.TaskPhoto{}, serrors.Internal("failed to store photo", err)
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (taskphoto.TaskPhoto, error) {
		// The receipt photo lives on the task row itself; everything else
		// is an attachment.
		if photoType == taskphoto.TypeReceipt {
			parent.ReceiptPhotoURL = &url
			if err := s.tasks.Update(txCtx, parent); err != nil {
				return taskphoto.TaskPhoto{}, err
			}
			return taskphoto.TaskPhoto{
				ID:        photoID,
				TaskID:    taskID,
				PhotoURL:  url,
				PhotoType: taskphoto.TypeReceipt,
			}, nil
		}
		return s.repo.Create(txCtx, taskphoto.TaskPhoto{
			ID:        photoID,
			TaskID:    taskID,
			PhotoURL:  url,
			PhotoType: photoType,
		})
	})
	if err != nil {
		composables.UseLogger(ctx).WithError(err).WithField("key", key).Warn("orphaned photo upload")
		return taskphoto.TaskPhoto{}, mapTaskPhotoError(err)
	}

	s.publisher.Publish(taskphoto.AttachedEvent{Photo: created})
	return created, nil
}

func (s *TaskPhotoService) Delete(ctx context.Context, id uuid.UUID) error {
	var removed taskphoto.TaskPhoto
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		photo, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		parent, err := s.tasks.GetByID(txCtx, photo.TaskID)
		if err != nil {
			return err
		}
		if err := authorize(txCtx, rbac.ActionUpdate, rbac.ResourceTaskPhoto, parent.OrganizationID, false); err != nil {
			return err
		}
		removed = photo
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return mapTaskPhotoError(err)
	}

	if err := s.store.Remove(ctx, removed.PhotoURL); err != nil {
		composables.UseLogger(ctx).WithError(err).Warn("failed to remove photo object")
	}
	return nil
}

func mapTaskPhotoError(err error) error {
	var svcErr *serrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	if errors.Is(err, taskphoto.ErrNotFound) {
		return serrors.NotFound("TASK_PHOTO_NOT_FOUND", "task photo not found", err)
	}
	if errors.Is(err, task.ErrNotFound) {
		return serrors.NotFound("TASK_NOT_FOUND", "task not found", err)
	}
	return serrors.Internal("task photo operation failed", err)
}
