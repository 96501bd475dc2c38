package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/courierdesk/courierdesk/modules/core/domain/aggregates/user"
	"github.com/courierdesk/courierdesk/modules/core/domain/entities/organization"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/eventbus"
	"github.com/courierdesk/courierdesk/pkg/rbac"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

// stubTx satisfies pgx.Tx without a database; the in-memory repositories
// never touch it, it only short-circuits the transaction plumbing.
type stubTx struct {
	pgx.Tx
}

func testCtx(identity composables.Identity) context.Context {
	ctx := composables.WithTx(context.Background(), stubTx{})
	return composables.WithIdentity(ctx, identity)
}

func orgAdmin(orgID uuid.UUID) composables.Identity {
	return composables.Identity{
		UserID:         uuid.New(),
		Email:          "admin@example.com",
		Role:           rbac.RoleOrgAdmin,
		OrganizationID: orgID,
	}
}

func superadmin() composables.Identity {
	return composables.Identity{
		UserID: uuid.New(),
		Email:  "root@example.com",
		Role:   rbac.RoleSuperadmin,
	}
}

func courierIdentity(orgID, userID uuid.UUID) composables.Identity {
	return composables.Identity{
		UserID:         userID,
		Email:          "courier@example.com",
		Role:           rbac.RoleCourier,
		OrganizationID: orgID,
	}
}

func testBus() eventbus.EventBus {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return eventbus.NewEventPublisher(logger)
}

func requireStatus(t *testing.T, err error, status int, code string) {
	t.Helper()
	var svcErr *serrors.ServiceError
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, status, svcErr.Status)
	require.Equal(t, code, svcErr.Code)
}

type memUserRepo struct {
	items map[uuid.UUID]user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{items: map[uuid.UUID]user.User{}}
}

func (m *memUserRepo) GetPaginated(_ context.Context, params *user.FindParams) ([]user.User, int64, error) {
	var out []user.User
	for _, u := range m.items {
		if params.OrganizationID != nil && u.OrganizationID() != *params.OrganizationID {
			continue
		}
		if params.Search != "" &&
			!strings.Contains(strings.ToLower(u.Name()), strings.ToLower(params.Search)) &&
			!strings.Contains(u.Email(), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := m.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	email = user.NormalizeEmail(email)
	for _, u := range m.items {
		if u.Email() == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (m *memUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	// The database owns email uniqueness; the mock enforces it the same way.
	for _, existing := range m.items {
		if existing.Email() == u.Email() {
			return user.User{}, user.ErrEmailTaken
		}
	}
	m.items[u.ID()] = u
	return u, nil
}

func (m *memUserRepo) Update(_ context.Context, u user.User) error {
	if _, ok := m.items[u.ID()]; !ok {
		return user.ErrNotFound
	}
	m.items[u.ID()] = u
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return user.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memOrgRepo struct {
	items map[uuid.UUID]organization.Organization
}

func newMemOrgRepo() *memOrgRepo {
	return &memOrgRepo{items: map[uuid.UUID]organization.Organization{}}
}

func (m *memOrgRepo) GetPaginated(_ context.Context, params *organization.FindParams) ([]organization.Organization, int64, error) {
	var out []organization.Organization
	for _, o := range m.items {
		if params != nil && params.Search != "" &&
			!strings.Contains(strings.ToLower(o.Name()), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (m *memOrgRepo) GetByID(_ context.Context, id uuid.UUID) (organization.Organization, error) {
	o, ok := m.items[id]
	if !ok {
		return organization.Organization{}, organization.ErrNotFound
	}
	return o, nil
}

func (m *memOrgRepo) Create(_ context.Context, o organization.Organization) (organization.Organization, error) {
	for _, existing := range m.items {
		if existing.Name() == o.Name() {
			return organization.Organization{}, organization.ErrNameTaken
		}
	}
	m.items[o.ID()] = o
	return o, nil
}

func (m *memOrgRepo) Update(_ context.Context, o organization.Organization) error {
	if _, ok := m.items[o.ID()]; !ok {
		return organization.ErrNotFound
	}
	for id, existing := range m.items {
		if id != o.ID() && existing.Name() == o.Name() {
			return organization.ErrNameTaken
		}
	}
	m.items[o.ID()] = o
	return nil
}

func (m *memOrgRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return organization.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// seedUser stores a ready-to-authenticate user and returns it.
func seedUser(t *testing.T, repo *memUserRepo, orgID uuid.UUID, name, email, password string, role rbac.Role) user.User {
	t.Helper()
	entity := user.New(orgID, name, email, role)
	entity, err := entity.SetPassword(password)
	require.NoError(t, err)
	repo.items[entity.ID()] = entity
	return entity
}
