package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/rbac"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

// authorize evaluates the fixed permission matrix for one operation. A deny
// is always surfaced as Forbidden, never NotFound: existence and permission
// are deliberately distinct pieces of information at this layer.
func authorize(ctx context.Context, action rbac.Action, resource rbac.Resource, resourceOrg uuid.UUID, self bool) error {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return serrors.Unauthorized("authentication required")
	}
	allowed := rbac.Allowed(rbac.Request{
		Role:        identity.Role,
		Action:      action,
		Resource:    resource,
		Self:        self,
		ActorOrg:    identity.OrganizationID,
		ResourceOrg: resourceOrg,
	})
	if !allowed {
		return serrors.Forbidden("permission denied")
	}
	return nil
}

// resolveTargetOrganization decides which tenant a creation lands in. An
// explicit organization id must match the actor's unless superadmin.
func resolveTargetOrganization(identity composables.Identity, requested string) (uuid.UUID, error) {
	if requested == "" {
		return identity.OrganizationID, nil
	}
	orgID, err := uuid.Parse(requested)
	if err != nil {
		return uuid.Nil, serrors.Validation("INVALID_ORGANIZATION_ID", "organizationId must be a valid identifier")
	}
	if !rbac.CanAssignOrganization(identity.Role, identity.OrganizationID, orgID) {
		return uuid.Nil, serrors.Forbidden("cannot create resources in another organization")
	}
	return orgID, nil
}

func scopeOrg(orgID *uuid.UUID) uuid.UUID {
	if orgID == nil {
		return uuid.Nil
	}
	return *orgID
}

func validationError(code string, fields serrors.ValidationErrors) *serrors.ServiceError {
	message := "invalid request body"
	for _, v := range fields {
		message = v
		break
	}
	return serrors.NewServiceError(400, code, message, nil)
}
