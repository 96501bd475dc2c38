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

	"github.com/courierdesk/courierdesk/modules/core/domain/aggregates/user"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/rbac"
	"github.com/courierdesk/courierdesk/pkg/repo"
)

const (
	userFindQuery = `
        SELECT
            u.id,
            u.organization_id,
            u.name,
            u.email,
            u.password_hash,
            u.role,
            u.is_active,
            u.created_at,
            u.updated_at
        FROM users u`

	userCountQuery = `SELECT COUNT(u.id) FROM users u`

	userInsertQuery = `
        INSERT INTO users (id, organization_id, name, email, password_hash, role, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	userUpdateQuery = `
        UPDATE users
        SET organization_id = $2,
            name = $3,
            email = $4,
            password_hash = $5,
            role = $6,
            is_active = $7,
            updated_at = NOW()
        WHERE id = $1`

	userDeleteQuery = `DELETE FROM users WHERE id = $1`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func (g *PgUserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (g *PgUserRepository) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	if params == nil {
		params = &user.FindParams{}
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := []string{}
	args := []any{}
	if params.OrganizationID != nil {
		where = append(where, fmt.Sprintf("u.organization_id = $%d", len(args)+1))
		args = append(args, *params.OrganizationID)
	}
	if params.Search != "" {
		index := len(args) + 1
		where = append(where, fmt.Sprintf("(u.name ILIKE $%d OR u.email ILIKE $%d)", index, index))
		args = append(args, "%"+params.Search+"%")
	}

	query := repo.Join(
		userFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY u.name",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	users, err := g.queryUsers(ctx, query, args...)
	if err != nil {
		return nil, 0, gerrors.Wrap(err, "failed to list users")
	}

	var total int64
	countQuery := repo.Join(userCountQuery, repo.JoinWhere(where...))
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, gerrors.Wrap(err, "failed to count users")
	}
	return users, total, nil
}

func (g *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE u.id = $1", id)
	if err != nil {
		return user.User{}, gerrors.Wrap(err, "failed to get user")
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE LOWER(u.email) = LOWER($1)", email)
	if err != nil {
		return user.User{}, gerrors.Wrap(err, "failed to get user by email")
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}

	_, err = tx.Exec(ctx, userInsertQuery,
		u.ID(),
		u.OrganizationID(),
		u.Name(),
		u.Email(),
		u.PasswordHash(),
		string(u.Role()),
		u.IsActive(),
	)
	if err != nil {
		return user.User{}, translateUserError(err)
	}
	return g.GetByID(ctx, u.ID())
}

func (g *PgUserRepository) Update(ctx context.Context, u user.User) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, userUpdateQuery,
		u.ID(),
		u.OrganizationID(),
		u.Name(),
		u.Email(),
		u.PasswordHash(),
		string(u.Role()),
		u.IsActive(),
	)
	if err != nil {
		return translateUserError(err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (g *PgUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, userDeleteQuery, id)
	if err != nil {
		return gerrors.Wrap(err, "failed to delete user")
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func translateUserError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return user.ErrEmailTaken
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrNotFound
	}
	return gerrors.Wrap(err, "user write failed")
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		id, organizationID   uuid.UUID
		name, email, hash    string
		role                 string
		isActive             bool
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &organizationID, &name, &email, &hash, &role, &isActive, &createdAt, &updatedAt); err != nil {
		return user.User{}, err
	}
	return user.Hydrate(id, organizationID, name, email, hash, rbac.Role(role), isActive, createdAt, updatedAt), nil
}
