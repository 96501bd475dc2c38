package rbac

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSuperadmin Role = "SUPERADMIN"
	RoleOrgAdmin   Role = "ORGADMIN"
	RoleCourier    Role = "COURIER"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleSuperadmin:
		return RoleSuperadmin, nil
	case RoleOrgAdmin:
		return RoleOrgAdmin, nil
	case RoleCourier:
		return RoleCourier, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

type Action string

const (
	ActionRead       Action = "read"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionAdminister Action = "administer"
)

type Resource string

const (
	ResourceOrganization Resource = "organizations"
	ResourceUser         Resource = "users"
	ResourceClient       Resource = "clients"
	ResourceProvider     Resource = "providers"
	ResourceCourier      Resource = "couriers"
	ResourceTask         Resource = "tasks"
	ResourceTaskPhoto    Resource = "task_photos"
	ResourceTaskHistory  Resource = "task_history"
)

// Request carries everything the policy needs for one decision. ResourceOrg
// is the owning organization of the target entity; for creation requests it
// is the organization the new entity would belong to.
type Request struct {
	Role        Role
	Action      Action
	Resource    Resource
	Self        bool
	ActorOrg    uuid.UUID
	ResourceOrg uuid.UUID
}

// Allowed is the fixed three-role permission matrix. It performs no I/O and
// never rejects with an error: a request it cannot classify is denied.
func Allowed(req Request) bool {
	switch req.Role {
	case RoleSuperadmin:
		return true
	case RoleOrgAdmin:
		if req.Resource == ResourceOrganization {
			// Org admins may look at their own organization but
			// administering organizations is superadmin territory.
			return req.Action == ActionRead && SameTenant(req.ActorOrg, req.ResourceOrg)
		}
		if req.Action == ActionAdminister {
			return false
		}
		return SameTenant(req.ActorOrg, req.ResourceOrg)
	case RoleCourier:
		if req.Resource == ResourceUser {
			return req.Action == ActionRead && req.Self
		}
		switch req.Resource {
		case ResourceTask, ResourceTaskPhoto, ResourceTaskHistory:
			if req.Action != ActionRead && req.Action != ActionUpdate {
				return false
			}
			return SameTenant(req.ActorOrg, req.ResourceOrg)
		}
		return false
	default:
		return false
	}
}

func SameTenant(a, b uuid.UUID) bool {
	return a != uuid.Nil && a == b
}

// CanAssignOrganization guards creation payloads that embed an explicit
// organization id: non-superadmins may only create inside their own tenant.
func CanAssignOrganization(role Role, actorOrg, requested uuid.UUID) bool {
	if role == RoleSuperadmin {
		return true
	}
	if requested == uuid.Nil {
		return true
	}
	return SameTenant(actorOrg, requested)
}
