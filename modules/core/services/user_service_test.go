package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierdesk/courierdesk/modules/core/domain/aggregates/user"
	"github.com/courierdesk/courierdesk/modules/core/services"
	"github.com/courierdesk/courierdesk/pkg/rbac"
)

type userFixture struct {
	repo *memUserRepo
	svc  *services.UserService
}

func newUserFixture() *userFixture {
	repo := newMemUserRepo()
	return &userFixture{
		repo: repo,
		svc:  services.NewUserService(repo, testBus()),
	}
}

func TestUserService_Create(t *testing.T) {
	orgID := uuid.New()

	t.Run("org admin creates a courier in the own tenant", func(t *testing.T) {
		f := newUserFixture()
		created, err := f.svc.Create(testCtx(orgAdmin(orgID)), &user.CreateDTO{
			Name:     "  Jane Doe  ",
			Email:    " Jane@Example.COM ",
			Password: "password123",
			Role:     "courier",
		})
		require.NoError(t, err)
		assert.Equal(t, orgID, created.OrganizationID())
		assert.Equal(t, "Jane Doe", created.Name())
		assert.Equal(t, "jane@example.com", created.Email())
		assert.Equal(t, rbac.RoleCourier, created.Role())
		assert.True(t, created.IsActive())
		assert.True(t, created.CheckPassword("password123"))
		assert.NotEqual(t, "password123", created.PasswordHash())
	})

	t.Run("only a superadmin may mint a superadmin", func(t *testing.T) {
		f := newUserFixture()
		_, err := f.svc.Create(testCtx(orgAdmin(orgID)), &user.CreateDTO{
			Name:     "Root",
			Email:    "root2@example.com",
			Password: "password123",
			Role:     "SUPERADMIN",
		})
		requireStatus(t, err, 403, "FORBIDDEN")

		created, err := f.svc.Create(testCtx(superadmin()), &user.CreateDTO{
			Name:           "Root",
			Email:          "root2@example.com",
			Password:       "password123",
			Role:           "SUPERADMIN",
			OrganizationID: orgID.String(),
		})
		require.NoError(t, err)
		assert.Equal(t, rbac.RoleSuperadmin, created.Role())
	})

	t.Run("explicit foreign organization is rejected", func(t *testing.T) {
		f := newUserFixture()
		_, err := f.svc.Create(testCtx(orgAdmin(orgID)), &user.CreateDTO{
			Name:           "Jane",
			Email:          "jane@example.com",
			Password:       "password123",
			Role:           "COURIER",
			OrganizationID: uuid.NewString(),
		})
		requireStatus(t, err, 403, "FORBIDDEN")
	})

	t.Run("duplicate email conflicts case-insensitively", func(t *testing.T) {
		f := newUserFixture()
		seedUser(t, f.repo, orgID, "Jane", "jane@example.com", "password123", rbac.RoleCourier)

		_, err := f.svc.Create(testCtx(orgAdmin(orgID)), &user.CreateDTO{
			Name:     "Other Jane",
			Email:    "JANE@example.com",
			Password: "password123",
			Role:     "COURIER",
		})
		requireStatus(t, err, 409, "USER_EMAIL_TAKEN")
	})

	t.Run("short password is rejected", func(t *testing.T) {
		f := newUserFixture()
		_, err := f.svc.Create(testCtx(orgAdmin(orgID)), &user.CreateDTO{
			Name:     "Jane",
			Email:    "jane@example.com",
			Password: "short",
			Role:     "COURIER",
		})
		requireStatus(t, err, 400, "USER_INVALID_BODY")
	})
}

func TestUserService_GetByID(t *testing.T) {
	orgID := uuid.New()
	f := newUserFixture()
	courier := seedUser(t, f.repo, orgID, "Jane", "jane@example.com", "password123", rbac.RoleCourier)
	peer := seedUser(t, f.repo, orgID, "John", "john@example.com", "password123", rbac.RoleCourier)

	t.Run("courier reads own record", func(t *testing.T) {
		got, err := f.svc.GetByID(testCtx(courierIdentity(orgID, courier.ID())), courier.ID())
		require.NoError(t, err)
		assert.Equal(t, courier.ID(), got.ID())
	})

	t.Run("courier cannot read a peer", func(t *testing.T) {
		_, err := f.svc.GetByID(testCtx(courierIdentity(orgID, courier.ID())), peer.ID())
		requireStatus(t, err, 403, "FORBIDDEN")
	})

	t.Run("org admin cannot read across tenants", func(t *testing.T) {
		_, err := f.svc.GetByID(testCtx(orgAdmin(uuid.New())), courier.ID())
		requireStatus(t, err, 403, "FORBIDDEN")
	})

	t.Run("superadmin reads anyone", func(t *testing.T) {
		got, err := f.svc.GetByID(testCtx(superadmin()), peer.ID())
		require.NoError(t, err)
		assert.Equal(t, peer.ID(), got.ID())
	})

	t.Run("missing user is not found", func(t *testing.T) {
		_, err := f.svc.GetByID(testCtx(superadmin()), uuid.New())
		requireStatus(t, err, 404, "USER_NOT_FOUND")
	})
}

func TestUserService_GetPaginated(t *testing.T) {
	orgA := uuid.New()
	orgB := uuid.New()
	f := newUserFixture()
	seedUser(t, f.repo, orgA, "Jane", "jane@a.example.com", "password123", rbac.RoleCourier)
	seedUser(t, f.repo, orgA, "John", "john@a.example.com", "password123", rbac.RoleOrgAdmin)
	seedUser(t, f.repo, orgB, "Mallory", "mallory@b.example.com", "password123", rbac.RoleCourier)

	t.Run("org admin listing is forced to the own tenant", func(t *testing.T) {
		users, total, err := f.svc.GetPaginated(testCtx(orgAdmin(orgA)), &user.FindParams{})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		for _, u := range users {
			assert.Equal(t, orgA, u.OrganizationID())
		}
	})

	t.Run("superadmin lists across tenants", func(t *testing.T) {
		_, total, err := f.svc.GetPaginated(testCtx(superadmin()), &user.FindParams{})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
	})
}

func TestUserService_Update(t *testing.T) {
	orgID := uuid.New()

	t.Run("sparse update leaves omitted fields alone", func(t *testing.T) {
		f := newUserFixture()
		entity := seedUser(t, f.repo, orgID, "Jane", "jane@example.com", "password123", rbac.RoleCourier)

		name := "Jane Renamed"
		updated, err := f.svc.Update(testCtx(orgAdmin(orgID)), entity.ID(), &user.UpdateDTO{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Jane Renamed", updated.Name())
		assert.Equal(t, "jane@example.com", updated.Email())
		assert.Equal(t, rbac.RoleCourier, updated.Role())
		assert.True(t, updated.CheckPassword("password123"))
	})

	t.Run("deactivation flips the flag", func(t *testing.T) {
		f := newUserFixture()
		entity := seedUser(t, f.repo, orgID, "Jane", "jane@example.com", "password123", rbac.RoleCourier)

		inactive := false
		updated, err := f.svc.Update(testCtx(orgAdmin(orgID)), entity.ID(), &user.UpdateDTO{IsActive: &inactive})
		require.NoError(t, err)
		assert.False(t, updated.IsActive())
	})

	t.Run("org admin cannot promote to superadmin", func(t *testing.T) {
		f := newUserFixture()
		entity := seedUser(t, f.repo, orgID, "Jane", "jane@example.com", "password123", rbac.RoleCourier)

		role := "SUPERADMIN"
		_, err := f.svc.Update(testCtx(orgAdmin(orgID)), entity.ID(), &user.UpdateDTO{Role: &role})
		requireStatus(t, err, 403, "FORBIDDEN")
	})

	t.Run("cross-tenant update is forbidden", func(t *testing.T) {
		f := newUserFixture()
		entity := seedUser(t, f.repo, orgID, "Jane", "jane@example.com", "password123", rbac.RoleCourier)

		name := "Hijacked"
		_, err := f.svc.Update(testCtx(orgAdmin(uuid.New())), entity.ID(), &user.UpdateDTO{Name: &name})
		requireStatus(t, err, 403, "FORBIDDEN")
	})
}

func TestUserService_Delete(t *testing.T) {
	orgID := uuid.New()
	f := newUserFixture()
	entity := seedUser(t, f.repo, orgID, "Jane", "jane@example.com", "password123", rbac.RoleCourier)

	require.NoError(t, f.svc.Delete(testCtx(orgAdmin(orgID)), entity.ID()))

	err := f.svc.Delete(testCtx(orgAdmin(orgID)), entity.ID())
	requireStatus(t, err, 404, "USER_NOT_FOUND")
}
