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

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/client"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/repo"
)

const (
	clientFindQuery = `
        SELECT
            c.id,
            c.organization_id,
            c.name,
            c.address_id,
            c.contact_name,
            c.email,
            c.phone_number,
            c.is_active,
            c.created_at,
            c.updated_at
        FROM clients c`

	clientCountQuery = `SELECT COUNT(c.id) FROM clients c`

	clientInsertQuery = `
        INSERT INTO clients (id, organization_id, name, address_id, contact_name, email, phone_number, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`

	clientUpdateQuery = `
        UPDATE clients
        SET name = $2,
            address_id = $3,
            contact_name = $4,
            email = $5,
            phone_number = $6,
            is_active = $7,
            updated_at = NOW()
        WHERE id = $1`

	clientDeleteQuery = `DELETE FROM clients WHERE id = $1`
)

type PgClientRepository struct{}

func NewClientRepository() client.Repository {
	return &PgClientRepository{}
}

func (g *PgClientRepository) queryClients(ctx context.Context, query string, args ...any) ([]client.Client, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]client.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (g *PgClientRepository) GetPaginated(ctx context.Context, params *client.FindParams) ([]client.Client, int64, error) {
	if params == nil {
		params = &client.FindParams{}
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := []string{}
	args := []any{}
	if params.OrganizationID != nil {
		where = append(where, fmt.Sprintf("c.organization_id = $%d", len(args)+1))
		args = append(args, *params.OrganizationID)
	}
	if params.Search != "" {
		index := len(args) + 1
		where = append(where, fmt.Sprintf("(c.name ILIKE $%d OR c.contact_name ILIKE $%d OR c.email ILIKE $%d)", index, index, index))
		args = append(args, "%"+params.Search+"%")
	}

	query := repo.Join(
		clientFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY c.name",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	clients, err := g.queryClients(ctx, query, args...)
	if err != nil {
		return nil, 0, gerrors.Wrap(err, "failed to list clients")
	}

	var total int64
	countQuery := repo.Join(clientCountQuery, repo.JoinWhere(where...))
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, gerrors.Wrap(err, "failed to count clients")
	}
	return clients, total, nil
}

func (g *PgClientRepository) GetByID(ctx context.Context, id uuid.UUID) (client.Client, error) {
	clients, err := g.queryClients(ctx, clientFindQuery+" WHERE c.id = $1", id)
	if err != nil {
		return client.Client{}, gerrors.Wrap(err, "failed to get client")
	}
	if len(clients) == 0 {
		return client.Client{}, client.ErrNotFound
	}
	return clients[0], nil
}

func (g *PgClientRepository) GetByName(ctx context.Context, organizationID uuid.UUID, name string) (client.Client, error) {
	clients, err := g.queryClients(ctx,
		clientFindQuery+" WHERE c.organization_id = $1 AND TRIM(c.name) = TRIM($2)",
		organizationID, name,
	)
	if err != nil {
		return client.Client{}, gerrors.Wrap(err, "failed to get client by name")
	}
	if len(clients) == 0 {
		return client.Client{}, client.ErrNotFound
	}
	return clients[0], nil
}

func (g *PgClientRepository) Create(ctx context.Context, c client.Client) (client.Client, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return client.Client{}, err
	}

	_, err = tx.Exec(ctx, clientInsertQuery,
		c.ID,
		c.OrganizationID,
		c.Name,
		c.AddressID,
		nullIfBlank(c.ContactName),
		nullIfBlank(c.Email),
		nullIfBlank(c.PhoneNumber),
		c.IsActive,
	)
	if err != nil {
		return client.Client{}, translateClientError(err)
	}
	return g.GetByID(ctx, c.ID)
}

func (g *PgClientRepository) Update(ctx context.Context, c client.Client) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, clientUpdateQuery,
		c.ID,
		c.Name,
		c.AddressID,
		nullIfBlank(c.ContactName),
		nullIfBlank(c.Email),
		nullIfBlank(c.PhoneNumber),
		c.IsActive,
	)
	if err != nil {
		return translateClientError(err)
	}
	if tag.RowsAffected() == 0 {
		return client.ErrNotFound
	}
	return nil
}

func (g *PgClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, clientDeleteQuery, id)
	if err != nil {
		return gerrors.Wrap(err, "failed to delete client")
	}
	if tag.RowsAffected() == 0 {
		return client.ErrNotFound
	}
	return nil
}

func translateClientError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return client.ErrNameTaken
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return client.ErrNotFound
	}
	return gerrors.Wrap(err, "client write failed")
}

func scanClient(row pgx.Row) (client.Client, error) {
	var (
		id, organizationID   uuid.UUID
		name                 string
		addressID            *uuid.UUID
		contactName, email   *string
		phoneNumber          *string
		isActive             bool
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &organizationID, &name, &addressID, &contactName, &email, &phoneNumber, &isActive, &createdAt, &updatedAt); err != nil {
		return client.Client{}, err
	}
	return client.Client{
		ID:             id,
		OrganizationID: organizationID,
		Name:           name,
		AddressID:      addressID,
		ContactName:    deref(contactName),
		Email:          deref(email),
		PhoneNumber:    deref(phoneNumber),
		IsActive:       isActive,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}
