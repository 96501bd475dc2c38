package rbac_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierdesk/courierdesk/pkg/rbac"
)

func TestParseRole(t *testing.T) {
	role, err := rbac.ParseRole(" orgadmin ")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleOrgAdmin, role)

	_, err = rbac.ParseRole("manager")
	require.Error(t, err)
}

func TestAllowed(t *testing.T) {
	orgA := uuid.New()
	orgB := uuid.New()

	cases := []struct {
		name string
		req  rbac.Request
		want bool
	}{
		{
			name: "superadmin can do anything cross tenant",
			req: rbac.Request{
				Role: rbac.RoleSuperadmin, Action: rbac.ActionDelete,
				Resource: rbac.ResourceTask, ActorOrg: orgA, ResourceOrg: orgB,
			},
			want: true,
		},
		{
			name: "superadmin administers organizations",
			req: rbac.Request{
				Role: rbac.RoleSuperadmin, Action: rbac.ActionAdminister,
				Resource: rbac.ResourceOrganization,
			},
			want: true,
		},
		{
			name: "orgadmin reads own organization",
			req: rbac.Request{
				Role: rbac.RoleOrgAdmin, Action: rbac.ActionRead,
				Resource: rbac.ResourceOrganization, ActorOrg: orgA, ResourceOrg: orgA,
			},
			want: true,
		},
		{
			name: "orgadmin cannot administer organizations",
			req: rbac.Request{
				Role: rbac.RoleOrgAdmin, Action: rbac.ActionAdminister,
				Resource: rbac.ResourceOrganization, ActorOrg: orgA, ResourceOrg: orgA,
			},
			want: false,
		},
		{
			name: "orgadmin manages own tenant resources",
			req: rbac.Request{
				Role: rbac.RoleOrgAdmin, Action: rbac.ActionDelete,
				Resource: rbac.ResourceClient, ActorOrg: orgA, ResourceOrg: orgA,
			},
			want: true,
		},
		{
			name: "orgadmin denied across tenants",
			req: rbac.Request{
				Role: rbac.RoleOrgAdmin, Action: rbac.ActionRead,
				Resource: rbac.ResourceTask, ActorOrg: orgA, ResourceOrg: orgB,
			},
			want: false,
		},
		{
			name: "courier reads own tenant tasks",
			req: rbac.Request{
				Role: rbac.RoleCourier, Action: rbac.ActionRead,
				Resource: rbac.ResourceTask, ActorOrg: orgA, ResourceOrg: orgA,
			},
			want: true,
		},
		{
			name: "courier updates own tenant tasks",
			req: rbac.Request{
				Role: rbac.RoleCourier, Action: rbac.ActionUpdate,
				Resource: rbac.ResourceTask, ActorOrg: orgA, ResourceOrg: orgA,
			},
			want: true,
		},
		{
			name: "courier cannot create tasks",
			req: rbac.Request{
				Role: rbac.RoleCourier, Action: rbac.ActionCreate,
				Resource: rbac.ResourceTask, ActorOrg: orgA, ResourceOrg: orgA,
			},
			want: false,
		},
		{
			name: "courier cannot delete tasks",
			req: rbac.Request{
				Role: rbac.RoleCourier, Action: rbac.ActionDelete,
				Resource: rbac.ResourceTask, ActorOrg: orgA, ResourceOrg: orgA,
			},
			want: false,
		},
		{
			name: "courier reads task history in tenant",
			req: rbac.Request{
				Role: rbac.RoleCourier, Action: rbac.ActionRead,
				Resource: rbac.ResourceTaskHistory, ActorOrg: orgA, ResourceOrg: orgA,
			},
			want: true,
		},
		{
			name: "courier denied tasks across tenants",
			req: rbac.Request{
				Role: rbac.RoleCourier, Action: rbac.ActionUpdate,
				Resource: rbac.ResourceTask, ActorOrg: orgA, ResourceOrg: orgB,
			},
			want: false,
		},
		{
			name: "courier reads own user record",
			req: rbac.Request{
				Role: rbac.RoleCourier, Action: rbac.ActionRead,
				Resource: rbac.ResourceUser, Self: true, ActorOrg: orgA, ResourceOrg: orgA,
			},
			want: true,
		},
		{
			name: "courier cannot read other users",
			req: rbac.Request{
				Role: rbac.RoleCourier, Action: rbac.ActionRead,
				Resource: rbac.ResourceUser, Self: false, ActorOrg: orgA, ResourceOrg: orgA,
			},
			want: false,
		},
		{
			name: "courier cannot touch clients",
			req: rbac.Request{
				Role: rbac.RoleCourier, Action: rbac.ActionRead,
				Resource: rbac.ResourceClient, ActorOrg: orgA, ResourceOrg: orgA,
			},
			want: false,
		},
		{
			name: "unknown role denied",
			req: rbac.Request{
				Role: rbac.Role("GUEST"), Action: rbac.ActionRead,
				Resource: rbac.ResourceTask, ActorOrg: orgA, ResourceOrg: orgA,
			},
			want: false,
		},
		{
			name: "nil tenant never matches",
			req: rbac.Request{
				Role: rbac.RoleOrgAdmin, Action: rbac.ActionRead,
				Resource: rbac.ResourceTask, ActorOrg: uuid.Nil, ResourceOrg: uuid.Nil,
			},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rbac.Allowed(tc.req))
		})
	}
}

func TestCanAssignOrganization(t *testing.T) {
	orgA := uuid.New()
	orgB := uuid.New()

	assert.True(t, rbac.CanAssignOrganization(rbac.RoleSuperadmin, orgA, orgB))
	assert.True(t, rbac.CanAssignOrganization(rbac.RoleOrgAdmin, orgA, orgA))
	assert.True(t, rbac.CanAssignOrganization(rbac.RoleOrgAdmin, orgA, uuid.Nil))
	assert.False(t, rbac.CanAssignOrganization(rbac.RoleOrgAdmin, orgA, orgB))
}
