package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/client"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/provider"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/task"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/address"
	"github.com/courierdesk/courierdesk/modules/logistics/services"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

type taskFixture struct {
	tasks     *memTaskRepo
	history   *memHistoryRepo
	addresses *memAddressRepo
	clients   *memClientRepo
	providers *memProviderRepo
	couriers  *memCourierRepo
	service   *services.TaskService
}

func newTaskFixture() *taskFixture {
	f := &taskFixture{
		tasks:     newMemTaskRepo(),
		history:   newMemHistoryRepo(),
		addresses: newMemAddressRepo(),
		clients:   newMemClientRepo(),
		providers: newMemProviderRepo(),
		couriers:  newMemCourierRepo(),
	}
	f.service = services.NewTaskService(
		f.tasks, f.history, f.addresses, f.clients, f.providers, f.couriers, testBus(),
	)
	return f
}

func (f *taskFixture) addClient(orgID uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.clients.items[id] = client.Client{ID: id, OrganizationID: orgID, Name: "acme", IsActive: true}
	return id
}

func (f *taskFixture) addProvider(orgID uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.providers.items[id] = provider.Provider{ID: id, OrganizationID: orgID, Name: "shipco", IsActive: true}
	return id
}

func requireStatus(t *testing.T, err error, status int, code string) {
	t.Helper()
	var svcErr *serrors.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, status, svcErr.Status)
	assert.Equal(t, code, svcErr.Code)
}

func TestTaskCreateDefaults(t *testing.T) {
	f := newTaskFixture()
	orgID := uuid.New()
	ctx := testCtx(orgAdmin(orgID))

	view, err := f.service.Create(ctx, &task.CreateDTO{Type: "deliver"})
	require.NoError(t, err)
	assert.Equal(t, task.TypeDeliver, view.Type)
	assert.Equal(t, task.StatusPending, view.Status)
	assert.Equal(t, task.PriorityNormal, view.Priority)
	assert.Equal(t, orgID, view.OrganizationID)
	assert.Nil(t, view.Address)
}

func TestTaskCreateRejectsBothParties(t *testing.T) {
	f := newTaskFixture()
	orgID := uuid.New()
	ctx := testCtx(orgAdmin(orgID))
	clientID := f.addClient(orgID)
	providerID := f.addProvider(orgID)

	_, err := f.service.Create(ctx, &task.CreateDTO{
		Type:       "RETIRE",
		ClientID:   clientID.String(),
		ProviderID: providerID.String(),
	})
	requireStatus(t, err, 400, "TASK_PARTY_EXCLUSIVE")
}

func TestTaskCreateDuplicateReference(t *testing.T) {
	f := newTaskFixture()
	orgID := uuid.New()
	otherOrg := uuid.New()
	ctx := testCtx(orgAdmin(orgID))

	_, err := f.service.Create(ctx, &task.CreateDTO{Type: "DELIVER", ReferenceNumber: "REF-1"})
	require.NoError(t, err)

	_, err = f.service.Create(ctx, &task.CreateDTO{Type: "DELIVER", ReferenceNumber: "REF-1"})
	requireStatus(t, err, 409, "TASK_REFERENCE_TAKEN")

	// Reference numbers are only unique per organization.
	_, err = f.service.Create(testCtx(orgAdmin(otherOrg)), &task.CreateDTO{Type: "DELIVER", ReferenceNumber: "REF-1"})
	require.NoError(t, err)
}

func TestTaskCreateUnknownClient(t *testing.T) {
	f := newTaskFixture()
	ctx := testCtx(orgAdmin(uuid.New()))

	_, err := f.service.Create(ctx, &task.CreateDTO{Type: "DELIVER", ClientID: uuid.NewString()})
	requireStatus(t, err, 400, "TASK_UNKNOWN_CLIENT")
}

func TestTaskCreateCrossTenantClient(t *testing.T) {
	f := newTaskFixture()
	orgID := uuid.New()
	ctx := testCtx(orgAdmin(orgID))
	foreignClient := f.addClient(uuid.New())

	_, err := f.service.Create(ctx, &task.CreateDTO{Type: "DELIVER", ClientID: foreignClient.String()})
	requireStatus(t, err, 400, "TASK_UNKNOWN_CLIENT")
}

func TestTaskCreateWithOverrideAddress(t *testing.T) {
	f := newTaskFixture()
	orgID := uuid.New()
	ctx := testCtx(orgAdmin(orgID))

	view, err := f.service.Create(ctx, &task.CreateDTO{
		Type:            "DELIVER",
		AddressOverride: &address.Payload{Street: "Main St", City: "Springfield"},
	})
	require.NoError(t, err)
	require.NotNil(t, view.AddressOverrideID)
	require.NotNil(t, view.Address)
	assert.Equal(t, "Springfield", view.Address.City)
}

func TestTaskGetByIDCrossTenantIsForbidden(t *testing.T) {
	f := newTaskFixture()
	orgID := uuid.New()
	created, err := f.service.Create(testCtx(orgAdmin(orgID)), &task.CreateDTO{Type: "DELIVER"})
	require.NoError(t, err)

	// A denied read is Forbidden, not NotFound.
	_, err = f.service.GetByID(testCtx(orgAdmin(uuid.New())), created.ID)
	requireStatus(t, err, 403, "FORBIDDEN")
}

func TestTaskSuperadminReadsAcrossTenants(t *testing.T) {
	f := newTaskFixture()
	created, err := f.service.Create(testCtx(orgAdmin(uuid.New())), &task.CreateDTO{Type: "RETIRE"})
	require.NoError(t, err)

	view, err := f.service.GetByID(testCtx(superadmin()), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, view.ID)
}

func TestTaskUpdateSparse(t *testing.T) {
	f := newTaskFixture()
	orgID := uuid.New()
	ctx := testCtx(orgAdmin(orgID))
	created, err := f.service.Create(ctx, &task.CreateDTO{
		Type:            "DELIVER",
		ReferenceNumber: "REF-9",
		Notes:           "ring the bell",
	})
	require.NoError(t, err)

	notes := "leave at the door"
	view, err := f.service.Update(ctx, created.ID, &task.UpdateDTO{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "leave at the door", *view.Notes)
	require.NotNil(t, view.ReferenceNumber)
	assert.Equal(t, "REF-9", *view.ReferenceNumber)
	assert.Equal(t, task.TypeDeliver, view.Type)
}

func TestTaskUpdateMergedExclusivity(t *testing.T) {
	f := newTaskFixture()
	orgID := uuid.New()
	ctx := testCtx(orgAdmin(orgID))
	clientID := f.addClient(orgID)
	providerID := f.addProvider(orgID)

	created, err := f.service.Create(ctx, &task.CreateDTO{Type: "DELIVER", ClientID: clientID.String()})
	require.NoError(t, err)

	raw := providerID.String()
	_, err = f.service.Update(ctx, created.ID, &task.UpdateDTO{ProviderID: &raw})
	requireStatus(t, err, 400, "TASK_PARTY_EXCLUSIVE")

	// Clearing the client in the same update makes room for the provider.
	empty := ""
	view, err := f.service.Update(ctx, created.ID, &task.UpdateDTO{ClientID: &empty, ProviderID: &raw})
	require.NoError(t, err)
	assert.Nil(t, view.ClientID)
	require.NotNil(t, view.ProviderID)
	assert.Equal(t, providerID, *view.ProviderID)
}

func TestTaskUpdateReferenceConflictExcludesSelf(t *testing.T) {
	f := newTaskFixture()
	orgID := uuid.New()
	ctx := testCtx(orgAdmin(orgID))
	created, err := f.service.Create(ctx, &task.CreateDTO{Type: "DELIVER", ReferenceNumber: "REF-1"})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, &task.CreateDTO{Type: "DELIVER", ReferenceNumber: "REF-2"})
	require.NoError(t, err)

	// Re-submitting its own reference is a no-op, not a conflict.
	same := "REF-1"
	_, err = f.service.Update(ctx, created.ID, &task.UpdateDTO{ReferenceNumber: &same})
	require.NoError(t, err)

	taken := "REF-2"
	_, err = f.service.Update(ctx, created.ID, &task.UpdateDTO{ReferenceNumber: &taken})
	requireStatus(t, err, 409, "TASK_REFERENCE_TAKEN")

	// Padding does not dodge the conflict check.
	padded := " REF-2 "
	_, err = f.service.Update(ctx, created.ID, &task.UpdateDTO{ReferenceNumber: &padded})
	requireStatus(t, err, 409, "TASK_REFERENCE_TAKEN")
}

func TestTaskUpdateTrimsTextFields(t *testing.T) {
	f := newTaskFixture()
	orgID := uuid.New()
	ctx := testCtx(orgAdmin(orgID))
	created, err := f.service.Create(ctx, &task.CreateDTO{Type: "DELIVER"})
	require.NoError(t, err)

	ref := "  REF-7  "
	notes := "  fragile cargo  "
	mbl := " MBL-1 "
	blank := "   "
	view, err := f.service.Update(ctx, created.ID, &task.UpdateDTO{
		ReferenceNumber: &ref,
		Notes:           &notes,
		MBL:             &mbl,
		HBL:             &blank,
	})
	require.NoError(t, err)
	require.NotNil(t, view.ReferenceNumber)
	assert.Equal(t, "REF-7", *view.ReferenceNumber)
	require.NotNil(t, view.Notes)
	assert.Equal(t, "fragile cargo", *view.Notes)
	require.NotNil(t, view.MBL)
	assert.Equal(t, "MBL-1", *view.MBL)
	// Whitespace-only clears the field the same way the empty string does.
	assert.Nil(t, view.HBL)
}

func TestTaskUpdateStatusWritesHistory(t *testing.T) {
	f := newTaskFixture()
	orgID := uuid.New()
	identity := orgAdmin(orgID)
	ctx := testCtx(identity)
	created, err := f.service.Create(ctx, &task.CreateDTO{Type: "DELIVER"})
	require.NoError(t, err)

	status := "CONFIRMED"
	view, err := f.service.Update(ctx, created.ID, &task.UpdateDTO{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, task.StatusConfirmed, view.Status)

	entries, err := f.history.GetByTask(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "PENDING", *entries[0].PreviousStatus)
	assert.Equal(t, "CONFIRMED", *entries[0].NewStatus)
	require.NotNil(t, entries[0].ChangedBy)
	assert.Equal(t, identity.UserID, *entries[0].ChangedBy)

	// An update that leaves the status alone records nothing.
	notes := "no change"
	_, err = f.service.Update(ctx, created.ID, &task.UpdateDTO{Notes: &notes})
	require.NoError(t, err)
	entries, err = f.history.GetByTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTaskDeleteRemovesOverrideAddress(t *testing.T) {
	f := newTaskFixture()
	orgID := uuid.New()
	ctx := testCtx(orgAdmin(orgID))
	created, err := f.service.Create(ctx, &task.CreateDTO{
		Type:            "DELIVER",
		AddressOverride: &address.Payload{City: "Springfield"},
	})
	require.NoError(t, err)
	overrideID := *created.AddressOverrideID

	require.NoError(t, f.service.Delete(ctx, created.ID))

	_, err = f.addresses.GetByID(ctx, overrideID)
	assert.ErrorIs(t, err, address.ErrNotFound)
}

func TestTaskListScopedToTenant(t *testing.T) {
	f := newTaskFixture()
	orgA := uuid.New()
	orgB := uuid.New()
	_, err := f.service.Create(testCtx(orgAdmin(orgA)), &task.CreateDTO{Type: "DELIVER"})
	require.NoError(t, err)
	_, err = f.service.Create(testCtx(orgAdmin(orgB)), &task.CreateDTO{Type: "RETIRE"})
	require.NoError(t, err)

	tasks, total, err := f.service.GetPaginated(testCtx(orgAdmin(orgA)), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, tasks, 1)
	assert.Equal(t, orgA, tasks[0].OrganizationID)

	tasks, total, err = f.service.GetPaginated(testCtx(superadmin()), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, tasks, 2)
}
