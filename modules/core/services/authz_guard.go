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
