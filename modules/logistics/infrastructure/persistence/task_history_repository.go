package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/taskhistory"
	"github.com/courierdesk/courierdesk/pkg/composables"
)

const (
	taskHistoryFindQuery = `
        SELECT th.id, th.task_id, th.previous_status, th.new_status, th.changed_by, th.created_at
        FROM task_history th`

	taskHistoryInsertQuery = `
        INSERT INTO task_history (id, task_id, previous_status, new_status, changed_by, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, task_id, previous_status, new_status, changed_by, created_at`

	taskHistoryDeleteQuery = `DELETE FROM task_history WHERE id = $1`
)

type PgTaskHistoryRepository struct{}

func NewTaskHistoryRepository() taskhistory.Repository {
	return &PgTaskHistoryRepository{}
}

func (g *PgTaskHistoryRepository) GetByTask(ctx context.Context, taskID uuid.UUID) ([]taskhistory.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx,
		taskHistoryFindQuery+" WHERE th.task_id = $1 ORDER BY th.created_at DESC",
		taskID,
	)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to list task history")
	}
	defer rows.Close()

	entries := make([]taskhistory.Entry, 0)
	for rows.Next() {
		var e taskhistory.Entry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.PreviousStatus, &e.NewStatus, &e.ChangedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (g *PgTaskHistoryRepository) Create(ctx context.Context, e taskhistory.Entry) (taskhistory.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return taskhistory.Entry{}, err
	}

	var out taskhistory.Entry
	err = tx.QueryRow(ctx, taskHistoryInsertQuery,
		e.ID, e.TaskID, e.PreviousStatus, e.NewStatus, e.ChangedBy,
	).Scan(&out.ID, &out.TaskID, &out.PreviousStatus, &out.NewStatus, &out.ChangedBy, &out.CreatedAt)
	if err != nil {
		return taskhistory.Entry{}, gerrors.Wrap(err, "failed to record task history")
	}
	return out, nil
}

func (g *PgTaskHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, taskHistoryDeleteQuery, id)
	if err != nil {
		return gerrors.Wrap(err, "failed to delete task history entry")
	}
	if tag.RowsAffected() == 0 {
		return taskhistory.ErrNotFound
	}
	return nil
}
