package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/task"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/repo"
)

const (
	taskFindQuery = `
        SELECT
            t.id,
            t.organization_id,
            t.type,
            t.reference_number,
            t.client_id,
            t.provider_id,
            t.address_override_id,
            t.courier_id,
            t.status,
            t.priority,
            t.scheduled_date,
            t.notes,
            t.mbl,
            t.hbl,
            t.origin_certificate,
            t.insurance_certificate,
            t.customs_certificate,
            t.linked_task_id,
            t.receipt_photo_url,
            t.photo_required,
            t.created_at,
            t.updated_at
        FROM tasks t`

	taskCountQuery = `SELECT COUNT(t.id) FROM tasks t`

	taskInsertQuery = `
        INSERT INTO tasks (
            id, organization_id, type, reference_number, client_id, provider_id,
            address_override_id, courier_id, status, priority, scheduled_date, notes,
            mbl, hbl, origin_certificate, insurance_certificate, customs_certificate,
            linked_task_id, receipt_photo_url, photo_required, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
            $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW()
        )`

	taskUpdateQuery = `
        UPDATE tasks
        SET type = $2,
            reference_number = $3,
            client_id = $4,
            provider_id = $5,
            address_override_id = $6,
            courier_id = $7,
            status = $8,
            priority = $9,
            scheduled_date = $10,
            notes = $11,
            mbl = $12,
            hbl = $13,
            origin_certificate = $14,
            insurance_certificate = $15,
            customs_certificate = $16,
            linked_task_id = $17,
            receipt_photo_url = $18,
            photo_required = $19,
            updated_at = NOW()
        WHERE id = $1`

	taskDeleteQuery = `DELETE FROM tasks WHERE id = $1`
)

type PgTaskRepository struct{}

func NewTaskRepository() task.Repository {
	return &PgTaskRepository{}
}

func (g *PgTaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (g *PgTaskRepository) GetPaginated(ctx context.Context, params *task.FindParams) ([]task.Task, int64, error) {
	if params == nil {
		params = &task.FindParams{}
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := []string{}
	args := []any{}
	if params.OrganizationID != nil {
		where = append(where, fmt.Sprintf("t.organization_id = $%d", len(args)+1))
		args = append(args, *params.OrganizationID)
	}
	if params.Status != nil {
		where = append(where, fmt.Sprintf("t.status = $%d", len(args)+1))
		args = append(args, string(*params.Status))
	}
	if params.CourierID != nil {
		where = append(where, fmt.Sprintf("t.courier_id = $%d", len(args)+1))
		args = append(args, *params.CourierID)
	}
	if params.Search != "" {
		index := len(args) + 1
		where = append(where, fmt.Sprintf("(t.reference_number ILIKE $%d OR t.notes ILIKE $%d)", index, index))
		args = append(args, "%"+params.Search+"%")
	}

	query := repo.Join(
		taskFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY t.created_at DESC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	tasks, err := g.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, 0, gerrors.Wrap(err, "failed to list tasks")
	}

	var total int64
	countQuery := repo.Join(taskCountQuery, repo.JoinWhere(where...))
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, gerrors.Wrap(err, "failed to count tasks")
	}
	return tasks, total, nil
}

func (g *PgTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (task.Task, error) {
	tasks, err := g.queryTasks(ctx, taskFindQuery+" WHERE t.id = $1", id)
	if err != nil {
		return task.Task{}, gerrors.Wrap(err, "failed to get task")
	}
	if len(tasks) == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return tasks[0], nil
}

func (g *PgTaskRepository) GetByReference(ctx context.Context, organizationID uuid.UUID, reference string) (task.Task, error) {
	tasks, err := g.queryTasks(ctx,
		taskFindQuery+" WHERE t.organization_id = $1 AND t.reference_number = $2",
		organizationID, reference,
	)
	if err != nil {
		return task.Task{}, gerrors.Wrap(err, "failed to get task by reference")
	}
	if len(tasks) == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return tasks[0], nil
}

func (g *PgTaskRepository) Create(ctx context.Context, t task.Task) (task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return task.Task{}, err
	}

	_, err = tx.Exec(ctx, taskInsertQuery,
		t.ID,
		t.OrganizationID,
		string(t.Type),
		t.ReferenceNumber,
		t.ClientID,
		t.ProviderID,
		t.AddressOverrideID,
		t.CourierID,
		string(t.Status),
		string(t.Priority),
		t.ScheduledDate,
		t.Notes,
		t.MBL,
		t.HBL,
		t.OriginCertificate,
		t.InsuranceCertificate,
		t.CustomsCertificate,
		t.LinkedTaskID,
		t.ReceiptPhotoURL,
		t.PhotoRequired,
	)
	if err != nil {
		return task.Task{}, translateTaskError(err)
	}
	return g.GetByID(ctx, t.ID)
}

func (g *PgTaskRepository) Update(ctx context.Context, t task.Task) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, taskUpdateQuery,
		t.ID,
		string(t.Type),
		t.ReferenceNumber,
		t.ClientID,
		t.ProviderID,
		t.AddressOverrideID,
		t.CourierID,
		string(t.Status),
		string(t.Priority),
		t.ScheduledDate,
		t.Notes,
		t.MBL,
		t.HBL,
		t.OriginCertificate,
		t.InsuranceCertificate,
		t.CustomsCertificate,
		t.LinkedTaskID,
		t.ReceiptPhotoURL,
		t.PhotoRequired,
	)
	if err != nil {
		return translateTaskError(err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (g *PgTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, taskDeleteQuery, id)
	if err != nil {
		return gerrors.Wrap(err, "failed to delete task")
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

// translateTaskError maps the partial unique index on
// (organization_id, reference_number) to the domain conflict sentinel; the
// constraint is the authority even when two creates race past the service
// pre-check.
func translateTaskError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return task.ErrReferenceTaken
		case pgerrcode.ForeignKeyViolation:
			return task.ErrNotFound
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return task.ErrNotFound
	}
	return gerrors.Wrap(err, "task write failed")
}

func scanTask(row pgx.Row) (task.Task, error) {
	var (
		t                    task.Task
		taskType             string
		status, priority     string
		createdAt, updatedAt time.Time
	)
	err := row.Scan(
		&t.ID,
		&t.OrganizationID,
		&taskType,
		&t.ReferenceNumber,
		&t.ClientID,
		&t.ProviderID,
		&t.AddressOverrideID,
		&t.CourierID,
		&status,
		&priority,
		&t.ScheduledDate,
		&t.Notes,
		&t.MBL,
		&t.HBL,
		&t.OriginCertificate,
		&t.InsuranceCertificate,
		&t.CustomsCertificate,
		&t.LinkedTaskID,
		&t.ReceiptPhotoURL,
		&t.PhotoRequired,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return task.Task{}, err
	}
	t.Type = task.Type(taskType)
	t.Status = task.Status(status)
	t.Priority = task.Priority(priority)
	t.CreatedAt = createdAt
	t.UpdatedAt = updatedAt
	return t, nil
}
