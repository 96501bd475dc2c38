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

	"github.com/courierdesk/courierdesk/modules/core/domain/entities/organization"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/repo"
)

const (
	organizationFindQuery = `
        SELECT
            o.id,
            o.name,
            o.created_at,
            o.updated_at
        FROM organizations o`

	organizationCountQuery = `SELECT COUNT(o.id) FROM organizations o`

	organizationInsertQuery = `
        INSERT INTO organizations (id, name, created_at, updated_at)
        VALUES ($1, $2, NOW(), NOW())`

	organizationUpdateQuery = `UPDATE organizations SET name = $2, updated_at = NOW() WHERE id = $1`

	organizationDeleteQuery = `DELETE FROM organizations WHERE id = $1`
)

type PgOrganizationRepository struct{}

func NewOrganizationRepository() organization.Repository {
	return &PgOrganizationRepository{}
}

func (g *PgOrganizationRepository) queryOrganizations(ctx context.Context, query string, args ...any) ([]organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]organization.Organization, 0)
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (g *PgOrganizationRepository) GetPaginated(ctx context.Context, params *organization.FindParams) ([]organization.Organization, int64, error) {
	if params == nil {
		params = &organization.FindParams{}
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := []string{}
	args := []any{}
	if params.Search != "" {
		where = append(where, fmt.Sprintf("o.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+params.Search+"%")
	}

	query := repo.Join(
		organizationFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY o.name",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	orgs, err := g.queryOrganizations(ctx, query, args...)
	if err != nil {
		return nil, 0, gerrors.Wrap(err, "failed to list organizations")
	}

	var total int64
	countQuery := repo.Join(organizationCountQuery, repo.JoinWhere(where...))
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, gerrors.Wrap(err, "failed to count organizations")
	}
	return orgs, total, nil
}

func (g *PgOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (organization.Organization, error) {
	orgs, err := g.queryOrganizations(ctx, organizationFindQuery+" WHERE o.id = $1", id)
	if err != nil {
		return organization.Organization{}, gerrors.Wrap(err, "failed to get organization")
	}
	if len(orgs) == 0 {
		return organization.Organization{}, organization.ErrNotFound
	}
	return orgs[0], nil
}

func (g *PgOrganizationRepository) Create(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Organization{}, err
	}

	if _, err := tx.Exec(ctx, organizationInsertQuery, o.ID(), o.Name()); err != nil {
		return organization.Organization{}, translateOrganizationError(err)
	}
	return g.GetByID(ctx, o.ID())
}

func (g *PgOrganizationRepository) Update(ctx context.Context, o organization.Organization) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, organizationUpdateQuery, o.ID(), o.Name())
	if err != nil {
		return translateOrganizationError(err)
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrNotFound
	}
	return nil
}

func (g *PgOrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, organizationDeleteQuery, id)
	if err != nil {
		return gerrors.Wrap(err, "failed to delete organization")
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrNotFound
	}
	return nil
}

// translateOrganizationError maps the unique constraint on organization
// names to the domain conflict sentinel. The constraint, not the service
// pre-check, is the authority under concurrency.
func translateOrganizationError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return organization.ErrNameTaken
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return organization.ErrNotFound
	}
	return gerrors.Wrap(err, "organization write failed")
}

func scanOrganization(row pgx.Row) (organization.Organization, error) {
	var (
		id                   uuid.UUID
		name                 string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &createdAt, &updatedAt); err != nil {
		return organization.Organization{}, err
	}
	return organization.Hydrate(id, name, createdAt, updatedAt), nil
}
