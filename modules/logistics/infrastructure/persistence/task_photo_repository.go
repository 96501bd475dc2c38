package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/taskphoto"
	"github.com/courierdesk/courierdesk/pkg/composables"
)

const (
	taskPhotoFindQuery = `
        SELECT tp.id, tp.task_id, tp.photo_url, tp.photo_type, tp.created_at
        FROM task_photos tp`

	taskPhotoInsertQuery = `
        INSERT INTO task_photos (id, task_id, photo_url, photo_type, created_at)
        VALUES ($1, $2, $3, $4, NOW())`

	taskPhotoDeleteQuery = `DELETE FROM task_photos WHERE id = $1`
)

type PgTaskPhotoRepository struct{}

func NewTaskPhotoRepository() taskphoto.Repository {
	return &PgTaskPhotoRepository{}
}

func (g *PgTaskPhotoRepository) queryPhotos(ctx context.Context, query string, args ...any) ([]taskphoto.TaskPhoto, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]taskphoto.TaskPhoto, 0)
	for rows.Next() {
		p, err := scanTaskPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (g *PgTaskPhotoRepository) GetByTask(ctx context.Context, taskID uuid.UUID) ([]taskphoto.TaskPhoto, error) {
	photos, err := g.queryPhotos(ctx,
		taskPhotoFindQuery+" WHERE tp.task_id = $1 ORDER BY tp.created_at",
		taskID,
	)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to list task photos")
	}
	return photos, nil
}

func (g *PgTaskPhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (taskphoto.TaskPhoto, error) {
	photos, err := g.queryPhotos(ctx, taskPhotoFindQuery+" WHERE tp.id = $1", id)
	if err != nil {
		return taskphoto.TaskPhoto{}, gerrors.Wrap(err, "failed to get task photo")
	}
	if len(photos) == 0 {
		return taskphoto.TaskPhoto{}, taskphoto.ErrNotFound
	}
	return photos[0], nil
}

func (g *PgTaskPhotoRepository) Create(ctx context.Context, p taskphoto.TaskPhoto) (taskphoto.TaskPhoto, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return taskphoto.TaskPhoto{}, err
	}

	_, err = tx.Exec(ctx, taskPhotoInsertQuery, p.ID, p.TaskID, p.PhotoURL, string(p.PhotoType))
	if err != nil {
		return taskphoto.TaskPhoto{}, gerrors.Wrap(err, "failed to create task photo")
	}
	return g.GetByID(ctx, p.ID)
}

func (g *PgTaskPhotoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, taskPhotoDeleteQuery, id)
	if err != nil {
		return gerrors.Wrap(err, "failed to delete task photo")
	}
	if tag.RowsAffected() == 0 {
		return taskphoto.ErrNotFound
	}
	return nil
}

func scanTaskPhoto(row pgx.Row) (taskphoto.TaskPhoto, error) {
	var (
		p         taskphoto.TaskPhoto
		photoType string
	)
	if err := row.Scan(&p.ID, &p.TaskID, &p.PhotoURL, &photoType, &p.CreatedAt); err != nil {
		return taskphoto.TaskPhoto{}, err
	}
	p.PhotoType = taskphoto.PhotoType(photoType)
	return p, nil
}
