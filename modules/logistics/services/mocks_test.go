package services_test

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/client"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/courier"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/provider"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/task"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/address"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/taskhistory"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/taskphoto"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/eventbus"
	"github.com/courierdesk/courierdesk/pkg/rbac"
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

func testBus() eventbus.EventBus {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return eventbus.NewEventPublisher(logger)
}

type memAddressRepo struct {
	items map[uuid.UUID]address.Address
}

func newMemAddressRepo() *memAddressRepo {
	return &memAddressRepo{items: map[uuid.UUID]address.Address{}}
}

func (m *memAddressRepo) GetByID(_ context.Context, id uuid.UUID) (address.Address, error) {
	a, ok := m.items[id]
	if !ok {
		return address.Address{}, address.ErrNotFound
	}
	return a, nil
}

func (m *memAddressRepo) Create(_ context.Context, a address.Address) (address.Address, error) {
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.items[a.ID] = a
	return a, nil
}

func (m *memAddressRepo) Update(_ context.Context, a address.Address) error {
	if _, ok := m.items[a.ID]; !ok {
		return address.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	m.items[a.ID] = a
	return nil
}

func (m *memAddressRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return address.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memClientRepo struct {
	items map[uuid.UUID]client.Client
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{items: map[uuid.UUID]client.Client{}}
}

func (m *memClientRepo) GetPaginated(_ context.Context, params *client.FindParams) ([]client.Client, int64, error) {
	out := make([]client.Client, 0)
	for _, c := range m.items {
		if params.OrganizationID != nil && c.OrganizationID != *params.OrganizationID {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (m *memClientRepo) GetByID(_ context.Context, id uuid.UUID) (client.Client, error) {
	c, ok := m.items[id]
	if !ok {
		return client.Client{}, client.ErrNotFound
	}
	return c, nil
}

func (m *memClientRepo) GetByName(_ context.Context, orgID uuid.UUID, name string) (client.Client, error) {
	for _, c := range m.items {
		if c.OrganizationID == orgID && strings.TrimSpace(c.Name) == strings.TrimSpace(name) {
			return c, nil
		}
	}
	return client.Client{}, client.ErrNotFound
}

func (m *memClientRepo) Create(_ context.Context, c client.Client) (client.Client, error) {
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.items[c.ID] = c
	return c, nil
}

func (m *memClientRepo) Update(_ context.Context, c client.Client) error {
	if _, ok := m.items[c.ID]; !ok {
		return client.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	m.items[c.ID] = c
	return nil
}

func (m *memClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return client.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memProviderRepo struct {
	items map[uuid.UUID]provider.Provider
}

func newMemProviderRepo() *memProviderRepo {
	return &memProviderRepo{items: map[uuid.UUID]provider.Provider{}}
}

func (m *memProviderRepo) GetPaginated(_ context.Context, params *provider.FindParams) ([]provider.Provider, int64, error) {
	out := make([]provider.Provider, 0)
	for _, p := range m.items {
		if params.OrganizationID != nil && p.OrganizationID != *params.OrganizationID {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *memProviderRepo) GetByID(_ context.Context, id uuid.UUID) (provider.Provider, error) {
	p, ok := m.items[id]
	if !ok {
		return provider.Provider{}, provider.ErrNotFound
	}
	return p, nil
}

func (m *memProviderRepo) GetByName(_ context.Context, orgID uuid.UUID, name string) (provider.Provider, error) {
	for _, p := range m.items {
		if p.OrganizationID == orgID && strings.TrimSpace(p.Name) == strings.TrimSpace(name) {
			return p, nil
		}
	}
	return provider.Provider{}, provider.ErrNotFound
}

func (m *memProviderRepo) Create(_ context.Context, p provider.Provider) (provider.Provider, error) {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.items[p.ID] = p
	return p, nil
}

func (m *memProviderRepo) Update(_ context.Context, p provider.Provider) error {
	if _, ok := m.items[p.ID]; !ok {
		return provider.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	m.items[p.ID] = p
	return nil
}

func (m *memProviderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return provider.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memCourierRepo struct {
	items map[uuid.UUID]courier.Courier
}

func newMemCourierRepo() *memCourierRepo {
	return &memCourierRepo{items: map[uuid.UUID]courier.Courier{}}
}

func (m *memCourierRepo) GetPaginated(_ context.Context, params *courier.FindParams) ([]courier.Courier, int64, error) {
	out := make([]courier.Courier, 0)
	for _, c := range m.items {
		if params.OrganizationID != nil && c.OrganizationID != *params.OrganizationID {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (m *memCourierRepo) GetByID(_ context.Context, id uuid.UUID) (courier.Courier, error) {
	c, ok := m.items[id]
	if !ok {
		return courier.Courier{}, courier.ErrNotFound
	}
	return c, nil
}

func (m *memCourierRepo) Create(_ context.Context, c courier.Courier) (courier.Courier, error) {
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.items[c.ID] = c
	return c, nil
}

func (m *memCourierRepo) Update(_ context.Context, c courier.Courier) error {
	if _, ok := m.items[c.ID]; !ok {
		return courier.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	m.items[c.ID] = c
	return nil
}

func (m *memCourierRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return courier.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memTaskRepo struct {
	items map[uuid.UUID]task.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{items: map[uuid.UUID]task.Task{}}
}

func (m *memTaskRepo) GetPaginated(_ context.Context, params *task.FindParams) ([]task.Task, int64, error) {
	out := make([]task.Task, 0)
	for _, t := range m.items {
		if params.OrganizationID != nil && t.OrganizationID != *params.OrganizationID {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		if params.CourierID != nil && (t.CourierID == nil || *t.CourierID != *params.CourierID) {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (m *memTaskRepo) GetByID(_ context.Context, id uuid.UUID) (task.Task, error) {
	t, ok := m.items[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (m *memTaskRepo) GetByReference(_ context.Context, orgID uuid.UUID, reference string) (task.Task, error) {
	for _, t := range m.items {
		if t.OrganizationID == orgID && t.ReferenceNumber != nil && *t.ReferenceNumber == reference {
			return t, nil
		}
	}
	return task.Task{}, task.ErrNotFound
}

func (m *memTaskRepo) Create(_ context.Context, t task.Task) (task.Task, error) {
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.items[t.ID] = t
	return t, nil
}

func (m *memTaskRepo) Update(_ context.Context, t task.Task) error {
	if _, ok := m.items[t.ID]; !ok {
		return task.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	m.items[t.ID] = t
	return nil
}

func (m *memTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return task.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memHistoryRepo struct {
	entries []taskhistory.Entry
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{}
}

func (m *memHistoryRepo) GetByTask(_ context.Context, taskID uuid.UUID) ([]taskhistory.Entry, error) {
	out := make([]taskhistory.Entry, 0)
	for _, e := range m.entries {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memHistoryRepo) Create(_ context.Context, e taskhistory.Entry) (taskhistory.Entry, error) {
	e.CreatedAt = time.Now()
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memHistoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return taskhistory.ErrNotFound
}

type memPhotoRepo struct {
	items map[uuid.UUID]taskphoto.TaskPhoto
}

func newMemPhotoRepo() *memPhotoRepo {
	return &memPhotoRepo{items: map[uuid.UUID]taskphoto.TaskPhoto{}}
}

func (m *memPhotoRepo) GetByTask(_ context.Context, taskID uuid.UUID) ([]taskphoto.TaskPhoto, error) {
	out := make([]taskphoto.TaskPhoto, 0)
	for _, p := range m.items {
		if p.TaskID == taskID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPhotoRepo) GetByID(_ context.Context, id uuid.UUID) (taskphoto.TaskPhoto, error) {
	p, ok := m.items[id]
	if !ok {
		return taskphoto.TaskPhoto{}, taskphoto.ErrNotFound
	}
	return p, nil
}

func (m *memPhotoRepo) Create(_ context.Context, p taskphoto.TaskPhoto) (taskphoto.TaskPhoto, error) {
	p.CreatedAt = time.Now()
	m.items[p.ID] = p
	return p, nil
}

func (m *memPhotoRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return taskphoto.ErrNotFound
	}
	delete(m.items, id)
	return nil
}
