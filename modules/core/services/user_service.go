package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/core/domain/aggregates/user"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/eventbus"
	"github.com/courierdesk/courierdesk/pkg/rbac"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

type UserService struct {
	repo      user.Repository
	publisher eventbus.EventBus
}

func NewUserService(repo user.Repository, publisher eventbus.EventBus) *UserService {
	return &UserService{repo: repo, publisher: publisher}
}

func (s *UserService) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return nil, 0, serrors.Unauthorized("authentication required")
	}
	if params == nil {
		params = &user.FindParams{}
	}
	// Listings are scoped to the actor's organization unless superadmin.
	if identity.Role != rbac.RoleSuperadmin {
		org := identity.OrganizationID
		params.OrganizationID = &org
	}
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceUser, scopeOrg(params.OrganizationID), false); err != nil {
		return nil, 0, err
	}
	users, total, err := s.repo.GetPaginated(ctx, params)
	if err != nil {
		return nil, 0, mapUserError(err)
	}
	return users, total, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return user.User{}, serrors.Unauthorized("authentication required")
	}
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, mapUserError(err)
	}
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceUser, entity.OrganizationID(), identity.UserID == id); err != nil {
		return user.User{}, err
	}
	return entity, nil
}

func (s *UserService) Create(ctx context.Context, dto *user.CreateDTO) (user.User, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return user.User{}, serrors.Unauthorized("authentication required")
	}
	if fields, ok := dto.Ok(); !ok {
		return user.User{}, validationError("USER_INVALID_BODY", fields)
	}

	role, err := rbac.ParseRole(dto.Role)
	if err != nil {
		return user.User{}, serrors.Validation("USER_INVALID_ROLE", err.Error())
	}
	// Only a superadmin may mint another superadmin.
	if role == rbac.RoleSuperadmin && identity.Role != rbac.RoleSuperadmin {
		return user.User{}, serrors.Forbidden("permission denied")
	}

	targetOrg, err := resolveTargetOrganization(identity, dto.OrganizationID)
	if err != nil {
		return user.User{}, err
	}
	if err := authorize(ctx, rbac.ActionCreate, rbac.ResourceUser, targetOrg, false); err != nil {
		return user.User{}, err
	}

	entity := user.New(targetOrg, dto.Name, dto.Email, role)
	entity, err = entity.SetPassword(dto.Password)
	if err != nil {
		return user.User{}, serrors.Internal("failed to hash password", err)
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
		if existing, err := s.repo.GetByEmail(txCtx, entity.Email()); err == nil && !existing.IsZero() {
			return user.User{}, user.ErrEmailTaken
		} else if err != nil && !errors.Is(err, user.ErrNotFound) {
			return user.User{}, err
		}
		return s.repo.Create(txCtx, entity)
	})
	if err != nil {
		return user.User{}, mapUserError(err)
	}

	s.publisher.Publish(user.CreatedEvent{User: created})
	return created, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, dto *user.UpdateDTO) (user.User, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return user.User{}, serrors.Unauthorized("authentication required")
	}
	if fields, ok := dto.Ok(); !ok {
		return user.User{}, validationError("USER_INVALID_BODY", fields)
	}

	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return user.User{}, err
		}
		if err := authorize(txCtx, rbac.ActionUpdate, rbac.ResourceUser, entity.OrganizationID(), identity.UserID == id); err != nil {
			return user.User{}, err
		}

		if dto.Name != nil {
			entity = entity.WithName(*dto.Name)
		}
		if dto.Email != nil {
			entity = entity.WithEmail(*dto.Email)
		}
		if dto.Role != nil {
			role, err := rbac.ParseRole(*dto.Role)
			if err != nil {
				return user.User{}, serrors.Validation("USER_INVALID_ROLE", err.Error())
			}
			if role == rbac.RoleSuperadmin && identity.Role != rbac.RoleSuperadmin {
				return user.User{}, serrors.Forbidden("permission denied")
			}
			entity = entity.WithRole(role)
		}
		if dto.IsActive != nil {
			entity = entity.WithActive(*dto.IsActive)
		}
		if dto.Password != nil {
			entity, err = entity.SetPassword(*dto.Password)
			if err != nil {
				return user.User{}, serrors.Internal("failed to hash password", err)
			}
		}

		if err := s.repo.Update(txCtx, entity); err != nil {
			return user.User{}, err
		}
		return s.repo.GetByID(txCtx, id)
	})
	if err != nil {
		return user.User{}, mapUserError(err)
	}

	s.publisher.Publish(user.UpdatedEvent{User: updated})
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := authorize(txCtx, rbac.ActionDelete, rbac.ResourceUser, entity.OrganizationID(), false); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return mapUserError(err)
	}

	s.publisher.Publish(user.DeletedEvent{ID: id})
	return nil
}

// resolveTargetOrganization decides which tenant a creation lands in. An
// explicit organization id must match the actor's unless superadmin; a
// mismatch is rejected before any persistence call.
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

func mapUserError(err error) error {
	var svcErr *serrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	switch {
	case errors.Is(err, user.ErrNotFound):
		return serrors.NotFound("USER_NOT_FOUND", "user not found", err)
	case errors.Is(err, user.ErrEmailTaken):
		return serrors.Conflict("USER_EMAIL_TAKEN", "email already in use", err)
	}
	return serrors.Internal("user operation failed", err)
}
