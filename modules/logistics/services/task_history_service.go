package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/task"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/taskhistory"
	"github.com/courierdesk/courierdesk/pkg/rbac"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

// TaskHistoryService is read-only for API consumers: entries are written by
// the task service inside the same transaction as the status change.
type TaskHistoryService struct {
	repo  taskhistory.Repository
	tasks task.Repository
}

func NewTaskHistoryService(repo taskhistory.Repository, tasks task.Repository) *TaskHistoryService {
	return &TaskHistoryService{repo: repo, tasks: tasks}
}

func (s *TaskHistoryService) GetByTask(ctx context.Context, taskID uuid.UUID) ([]taskhistory.Entry, error) {
	parent, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, mapTaskError(err)
	}
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceTaskHistory, parent.OrganizationID, false); err != nil {
		return nil, err
	}
	entries, err := s.repo.GetByTask(ctx, taskID)
	if err != nil {
		return nil, mapTaskHistoryError(err)
	}
	return entries, nil
}

func mapTaskHistoryError(err error) error {
	var svcErr *serrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	if errors.Is(err, taskhistory.ErrNotFound) {
		return serrors.NotFound("TASK_HISTORY_NOT_FOUND", "task history entry not found", err)
	}
	return serrors.Internal("task history operation failed", err)
}
