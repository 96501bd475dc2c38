package persistence

import (
	"context"
	"fmt"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/courier"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/repo"
)

const (
	courierFindQuery = `
        SELECT
            co.id,
            co.organization_id,
            co.user_id,
            co.name,
            co.phone_number,
            co.vehicle_type,
            co.is_active,
            co.created_at,
            co.updated_at
        FROM couriers co`

	courierCountQuery = `SELECT COUNT(co.id) FROM couriers co`

	courierInsertQuery = `
        INSERT INTO couriers (id, organization_id, user_id, name, phone_number, vehicle_type, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	courierUpdateQuery = `
        UPDATE couriers
        SET user_id = $2,
            name = $3,
            phone_number = $4,
            vehicle_type = $5,
            is_active = $6,
            updated_at = NOW()
        WHERE id = $1`

	courierDeleteQuery = `DELETE FROM couriers WHERE id = $1`
)

type PgCourierRepository struct{}

func NewCourierRepository() courier.Repository {
	return &PgCourierRepository{}
}

func (g *PgCourierRepository) queryCouriers(ctx context.Context, query string, args ...any) ([]courier.Courier, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]courier.Courier, 0)
	for rows.Next() {
		c, err := scanCourier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (g *PgCourierRepository) GetPaginated(ctx context.Context, params *courier.FindParams) ([]courier.Courier, int64, error) {
	if params == nil {
		params = &courier.FindParams{}
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := []string{}
	args := []any{}
	if params.OrganizationID != nil {
		where = append(where, fmt.Sprintf("co.organization_id = $%d", len(args)+1))
		args = append(args, *params.OrganizationID)
	}
	if params.Search != "" {
		index := len(args) + 1
		where = append(where, fmt.Sprintf("(co.name ILIKE $%d OR co.phone_number ILIKE $%d)", index, index))
		args = append(args, "%"+params.Search+"%")
	}

	query := repo.Join(
		courierFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY co.name",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	couriers, err := g.queryCouriers(ctx, query, args...)
	if err != nil {
		return nil, 0, gerrors.Wrap(err, "failed to list couriers")
	}

	var total int64
	countQuery := repo.Join(courierCountQuery, repo.JoinWhere(where...))
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, gerrors.Wrap(err, "failed to count couriers")
	}
	return couriers, total, nil
}

func (g *PgCourierRepository) GetByID(ctx context.Context, id uuid.UUID) (courier.Courier, error) {
	couriers, err := g.queryCouriers(ctx, courierFindQuery+" WHERE co.id = $1", id)
	if err != nil {
		return courier.Courier{}, gerrors.Wrap(err, "failed to get courier")
	}
	if len(couriers) == 0 {
		return courier.Courier{}, courier.ErrNotFound
	}
	return couriers[0], nil
}

func (g *PgCourierRepository) Create(ctx context.Context, c courier.Courier) (courier.Courier, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return courier.Courier{}, err
	}

	_, err = tx.Exec(ctx, courierInsertQuery,
		c.ID,
		c.OrganizationID,
		c.UserID,
		c.Name,
		c.PhoneNumber,
		nullIfBlank(c.VehicleType),
		c.IsActive,
	)
	if err != nil {
		return courier.Courier{}, gerrors.Wrap(err, "failed to create courier")
	}
	return g.GetByID(ctx, c.ID)
}

func (g *PgCourierRepository) Update(ctx context.Context, c courier.Courier) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, courierUpdateQuery,
		c.ID,
		c.UserID,
		c.Name,
		c.PhoneNumber,
		nullIfBlank(c.VehicleType),
		c.IsActive,
	)
	if err != nil {
		return gerrors.Wrap(err, "failed to update courier")
	}
	if tag.RowsAffected() == 0 {
		return courier.ErrNotFound
	}
	return nil
}

func (g *PgCourierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, courierDeleteQuery, id)
	if err != nil {
		return gerrors.Wrap(err, "failed to delete courier")
	}
	if tag.RowsAffected() == 0 {
		return courier.ErrNotFound
	}
	return nil
}

func scanCourier(row pgx.Row) (courier.Courier, error) {
	var (
		id, organizationID   uuid.UUID
		userID               *uuid.UUID
		name, phoneNumber    string
		vehicleType          *string
		isActive             bool
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &organizationID, &userID, &name, &phoneNumber, &vehicleType, &isActive, &createdAt, &updatedAt); err != nil {
		return courier.Courier{}, err
	}
	return courier.Courier{
		ID:             id,
		OrganizationID: organizationID,
		UserID:         userID,
		Name:           name,
		PhoneNumber:    phoneNumber,
		VehicleType:    deref(vehicleType),
		IsActive:       isActive,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}
