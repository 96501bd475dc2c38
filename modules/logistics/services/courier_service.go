package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/courier"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/eventbus"
	"github.com/courierdesk/courierdesk/pkg/rbac"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

type CourierService struct {
	repo      courier.Repository
	publisher eventbus.EventBus
}

func NewCourierService(repo courier.Repository, publisher eventbus.EventBus) *CourierService {
	return &CourierService{repo: repo, publisher: publisher}
}

func (s *CourierService) GetPaginated(ctx context.Context, params *courier.FindParams) ([]courier.Courier, int64, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return nil, 0, serrors.Unauthorized("authentication required")
	}
	if params == nil {
		params = &courier.FindParams{}
	}
	if identity.Role != rbac.RoleSuperadmin {
		org := identity.OrganizationID
		params.OrganizationID = &org
	}
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceCourier, scopeOrg(params.OrganizationID), false); err != nil {
		return nil, 0, err
	}
	couriers, total, err := s.repo.GetPaginated(ctx, params)
	if err != nil {
		return nil, 0, mapCourierError(err)
	}
	return couriers, total, nil
}

func (s *CourierService) GetByID(ctx context.Context, id uuid.UUID) (courier.Courier, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return courier.Courier{}, mapCourierError(err)
	}
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceCourier, entity.OrganizationID, false); err != nil {
		return courier.Courier{}, err
	}
	return entity, nil
}

func (s *CourierService) Create(ctx context.Context, dto *courier.CreateDTO) (courier.Courier, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return courier.Courier{}, serrors.Unauthorized("authentication required")
	}
	if fields, ok := dto.Ok(); !ok {
		return courier.Courier{}, validationError("COURIER_INVALID_BODY", fields)
	}

	targetOrg, err := resolveTargetOrganization(identity, dto.OrganizationID)
	if err != nil {
		return courier.Courier{}, err
	}
	if err := authorize(ctx, rbac.ActionCreate, rbac.ResourceCourier, targetOrg, false); err != nil {
		return courier.Courier{}, err
	}

	entity := courier.Courier{
		ID:             uuid.New(),
		OrganizationID: targetOrg,
		Name:           dto.Name,
		PhoneNumber:    dto.PhoneNumber,
		VehicleType:    dto.VehicleType,
		IsActive:       true,
	}
	if dto.UserID != "" {
		userID, err := uuid.Parse(dto.UserID)
		if err != nil {
			return courier.Courier{}, serrors.Validation("COURIER_INVALID_USER_ID", "userId must be a valid identifier")
		}
		entity.UserID = &userID
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (courier.Courier, error) {
		return s.repo.Create(txCtx, entity)
	})
	if err != nil {
		return courier.Courier{}, mapCourierError(err)
	}

	s.publisher.Publish(courier.CreatedEvent{Courier: created})
	return created, nil
}

func (s *CourierService) Update(ctx context.Context, id uuid.UUID, dto *courier.UpdateDTO) (courier.Courier, error) {
	if fields, ok := dto.Ok(); !ok {
		return courier.Courier{}, validationError("COURIER_INVALID_BODY", fields)
	}

	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (courier.Courier, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return courier.Courier{}, err
		}
		if err := authorize(txCtx, rbac.ActionUpdate, rbac.ResourceCourier, entity.OrganizationID, false); err != nil {
			return courier.Courier{}, err
		}

		if dto.Name != nil {
			entity.Name = *dto.Name
		}
		if dto.PhoneNumber != nil {
			entity.PhoneNumber = *dto.PhoneNumber
		}
		if dto.VehicleType != nil {
			entity.VehicleType = *dto.VehicleType
		}
		if dto.UserID != nil {
			// An empty string unlinks the login; anything else must parse.
			if *dto.UserID == "" {
				entity.UserID = nil
			} else {
				userID, err := uuid.Parse(*dto.UserID)
				if err != nil {
					return courier.Courier{}, serrors.Validation("COURIER_INVALID_USER_ID", "userId must be a valid identifier")
				}
				entity.UserID = &userID
			}
		}
		if dto.IsActive != nil {
			entity.IsActive = *dto.IsActive
		}

		if err := s.repo.Update(txCtx, entity); err != nil {
			return courier.Courier{}, err
		}
		return s.repo.GetByID(txCtx, id)
	})
	if err != nil {
		return courier.Courier{}, mapCourierError(err)
	}

	s.publisher.Publish(courier.UpdatedEvent{Courier: updated})
	return updated, nil
}

func (s *CourierService) Delete(ctx context.Context, id uuid.UUID) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := authorize(txCtx, rbac.ActionDelete, rbac.ResourceCourier, entity.OrganizationID, false); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return mapCourierError(err)
	}

	s.publisher.Publish(courier.DeletedEvent{ID: id})
	return nil
}

func mapCourierError(err error) error {
	var svcErr *serrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	if errors.Is(err, courier.ErrNotFound) {
		return serrors.NotFound("COURIER_NOT_FOUND", "courier not found", err)
	}
	return serrors.Internal("courier operation failed", err)
}
