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

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/provider"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/repo"
)

const (
	providerFindQuery = `
        SELECT
            p.id,
            p.organization_id,
            p.name,
            p.address_id,
            p.contact_name,
            p.email,
            p.phone_number,
            p.is_active,
            p.created_at,
            p.updated_at
        FROM providers p`

	providerCountQuery = `SELECT COUNT(p.id) FROM providers p`

	providerInsertQuery = `
        INSERT INTO providers (id, organization_id, name, address_id, contact_name, email, phone_number, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`

	providerUpdateQuery = `
        UPDATE providers
        SET name = $2,
            address_id = $3,
            contact_name = $4,
            email = $5,
            phone_number = $6,
            is_active = $7,
            updated_at = NOW()
        WHERE id = $1`

	providerDeleteQuery = `DELETE FROM providers WHERE id = $1`
)

type PgProviderRepository struct{}

func NewProviderRepository() provider.Repository {
	return &PgProviderRepository{}
}

func (g *PgProviderRepository) queryProviders(ctx context.Context, query string, args ...any) ([]provider.Provider, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]provider.Provider, 0)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (g *PgProviderRepository) GetPaginated(ctx context.Context, params *provider.FindParams) ([]provider.Provider, int64, error) {
	if params == nil {
		params = &provider.FindParams{}
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := []string{}
	args := []any{}
	if params.OrganizationID != nil {
		where = append(where, fmt.Sprintf("p.organization_id = $%d", len(args)+1))
		args = append(args, *params.OrganizationID)
	}
	if params.Search != "" {
		index := len(args) + 1
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.contact_name ILIKE $%d OR p.email ILIKE $%d)", index, index, index))
		args = append(args, "%"+params.Search+"%")
	}

	query := repo.Join(
		providerFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY p.name",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	providers, err := g.queryProviders(ctx, query, args...)
	if err != nil {
		return nil, 0, gerrors.Wrap(err, "failed to list providers")
	}

	var total int64
	countQuery := repo.Join(providerCountQuery, repo.JoinWhere(where...))
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, gerrors.Wrap(err, "failed to count providers")
	}
	return providers, total, nil
}

func (g *PgProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (provider.Provider, error) {
	providers, err := g.queryProviders(ctx, providerFindQuery+" WHERE p.id = $1", id)
	if err != nil {
		return provider.Provider{}, gerrors.Wrap(err, "failed to get provider")
	}
	if len(providers) == 0 {
		return provider.Provider{}, provider.ErrNotFound
	}
	return providers[0], nil
}

func (g *PgProviderRepository) GetByName(ctx context.Context, organizationID uuid.UUID, name string) (provider.Provider, error) {
	providers, err := g.queryProviders(ctx,
		providerFindQuery+" WHERE p.organization_id = $1 AND TRIM(p.name) = TRIM($2)",
		organizationID, name,
	)
	if err != nil {
		return provider.Provider{}, gerrors.Wrap(err, "failed to get provider by name")
	}
	if len(providers) == 0 {
		return provider.Provider{}, provider.ErrNotFound
	}
	return providers[0], nil
}

func (g *PgProviderRepository) Create(ctx context.Context, p provider.Provider) (provider.Provider, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return provider.Provider{}, err
	}

	_, err = tx.Exec(ctx, providerInsertQuery,
		p.ID,
		p.OrganizationID,
		p.Name,
		p.AddressID,
		nullIfBlank(p.ContactName),
		nullIfBlank(p.Email),
		nullIfBlank(p.PhoneNumber),
		p.IsActive,
	)
	if err != nil {
		return provider.Provider{}, translateProviderError(err)
	}
	return g.GetByID(ctx, p.ID)
}

func (g *PgProviderRepository) Update(ctx context.Context, p provider.Provider) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, providerUpdateQuery,
		p.ID,
		p.Name,
		p.AddressID,
		nullIfBlank(p.ContactName),
		nullIfBlank(p.Email),
		nullIfBlank(p.PhoneNumber),
		p.IsActive,
	)
	if err != nil {
		return translateProviderError(err)
	}
	if tag.RowsAffected() == 0 {
		return provider.ErrNotFound
	}
	return nil
}

func (g *PgProviderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, providerDeleteQuery, id)
	if err != nil {
		return gerrors.Wrap(err, "failed to delete provider")
	}
	if tag.RowsAffected() == 0 {
		return provider.ErrNotFound
	}
	return nil
}

func translateProviderError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return provider.ErrNameTaken
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return provider.ErrNotFound
	}
	return gerrors.Wrap(err, "provider write failed")
}

func scanProvider(row pgx.Row) (provider.Provider, error) {
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
		return provider.Provider{}, err
	}
	return provider.Provider{
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
