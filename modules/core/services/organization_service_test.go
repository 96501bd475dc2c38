package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierdesk/courierdesk/modules/core/domain/entities/organization"
	"github.com/courierdesk/courierdesk/modules/core/services"
)

type orgFixture struct {
	repo *memOrgRepo
	svc  *services.OrganizationService
}

func newOrgFixture() *orgFixture {
	repo := newMemOrgRepo()
	return &orgFixture{
		repo: repo,
		svc:  services.NewOrganizationService(repo, testBus()),
	}
}

func (f *orgFixture) seed(t *testing.T, name string) organization.Organization {
	t.Helper()
	org := organization.New(name)
	f.repo.items[org.ID()] = org
	return org
}

func TestOrganizationService_Create(t *testing.T) {
	t.Run("superadmin creates", func(t *testing.T) {
		f := newOrgFixture()
		created, err := f.svc.Create(testCtx(superadmin()), "  Acme Couriers  ")
		require.NoError(t, err)
		assert.Equal(t, "Acme Couriers", created.Name())
	})

	t.Run("org admin is denied", func(t *testing.T) {
		f := newOrgFixture()
		_, err := f.svc.Create(testCtx(orgAdmin(uuid.New())), "Acme Couriers")
		requireStatus(t, err, 403, "FORBIDDEN")
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		f := newOrgFixture()
		_, err := f.svc.Create(testCtx(superadmin()), "   ")
		requireStatus(t, err, 400, "ORGANIZATION_INVALID_NAME")
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		f := newOrgFixture()
		f.seed(t, "Acme Couriers")
		_, err := f.svc.Create(testCtx(superadmin()), "Acme Couriers")
		requireStatus(t, err, 409, "ORGANIZATION_NAME_TAKEN")
	})
}

func TestOrganizationService_GetByID(t *testing.T) {
	f := newOrgFixture()
	org := f.seed(t, "Acme Couriers")

	t.Run("org admin reads the own organization", func(t *testing.T) {
		got, err := f.svc.GetByID(testCtx(orgAdmin(org.ID())), org.ID())
		require.NoError(t, err)
		assert.Equal(t, org.ID(), got.ID())
	})

	t.Run("org admin cannot read another organization", func(t *testing.T) {
		_, err := f.svc.GetByID(testCtx(orgAdmin(uuid.New())), org.ID())
		requireStatus(t, err, 403, "FORBIDDEN")
	})

	t.Run("missing organization is not found", func(t *testing.T) {
		_, err := f.svc.GetByID(testCtx(superadmin()), uuid.New())
		requireStatus(t, err, 404, "ORGANIZATION_NOT_FOUND")
	})
}

func TestOrganizationService_GetPaginated(t *testing.T) {
	f := newOrgFixture()
	f.seed(t, "Acme Couriers")
	f.seed(t, "Globex Logistics")

	t.Run("superadmin lists all", func(t *testing.T) {
		_, total, err := f.svc.GetPaginated(testCtx(superadmin()), &organization.FindParams{})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("org admin is denied", func(t *testing.T) {
		_, _, err := f.svc.GetPaginated(testCtx(orgAdmin(uuid.New())), &organization.FindParams{})
		requireStatus(t, err, 403, "FORBIDDEN")
	})
}

func TestOrganizationService_Rename(t *testing.T) {
	f := newOrgFixture()
	org := f.seed(t, "Acme Couriers")
	f.seed(t, "Globex Logistics")

	t.Run("superadmin renames", func(t *testing.T) {
		updated, err := f.svc.Rename(testCtx(superadmin()), org.ID(), "Acme Express")
		require.NoError(t, err)
		assert.Equal(t, "Acme Express", updated.Name())
	})

	t.Run("rename onto a taken name conflicts", func(t *testing.T) {
		_, err := f.svc.Rename(testCtx(superadmin()), org.ID(), "Globex Logistics")
		requireStatus(t, err, 409, "ORGANIZATION_NAME_TAKEN")
	})

	t.Run("org admin is denied", func(t *testing.T) {
		_, err := f.svc.Rename(testCtx(orgAdmin(org.ID())), org.ID(), "Mine Now")
		requireStatus(t, err, 403, "FORBIDDEN")
	})
}

func TestOrganizationService_Delete(t *testing.T) {
	f := newOrgFixture()
	org := f.seed(t, "Acme Couriers")

	require.NoError(t, f.svc.Delete(testCtx(superadmin()), org.ID()))

	err := f.svc.Delete(testCtx(superadmin()), org.ID())
	requireStatus(t, err, 404, "ORGANIZATION_NOT_FOUND")
}
