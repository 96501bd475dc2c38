package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/client"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/address"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/eventbus"
	"github.com/courierdesk/courierdesk/pkg/rbac"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

type ClientService struct {
	repo      client.Repository
	addresses address.Repository
	publisher eventbus.EventBus
}

func NewClientService(repo client.Repository, addresses address.Repository, publisher eventbus.EventBus) *ClientService {
	return &ClientService{repo: repo, addresses: addresses, publisher: publisher}
}

func (s *ClientService) GetPaginated(ctx context.Context, params *client.FindParams) ([]client.Client, int64, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return nil, 0, serrors.Unauthorized("authentication required")
	}
	if params == nil {
		params = &client.FindParams{}
	}
	if identity.Role != rbac.RoleSuperadmin {
		org := identity.OrganizationID
		params.OrganizationID = &org
	}
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceClient, scopeOrg(params.OrganizationID), false); err != nil {
		return nil, 0, err
	}
	clients, total, err := s.repo.GetPaginated(ctx, params)
	if err != nil {
		return nil, 0, mapClientError(err)
	}
	return clients, total, nil
}

func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (client.View, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return client.View{}, mapClientError(err)
	}
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceClient, entity.OrganizationID, false); err != nil {
		return client.View{}, err
	}
	return s.toView(ctx, entity)
}

func (s *ClientService) Create(ctx context.Context, dto *client.CreateDTO) (client.View, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return client.View{}, serrors.Unauthorized("authentication required")
	}
	if fields, ok := dto.Ok(); !ok {
		return client.View{}, validationError("CLIENT_INVALID_BODY", fields)
	}

	targetOrg, err := resolveTargetOrganization(identity, dto.OrganizationID)
	if err != nil {
		return client.View{}, err
	}
	if err := authorize(ctx, rbac.ActionCreate, rbac.ResourceClient, targetOrg, false); err != nil {
		return client.View{}, err
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (client.Client, error) {
		if _, err := s.repo.GetByName(txCtx, targetOrg, dto.Name); err == nil {
			return client.Client{}, client.ErrNameTaken
		} else if !errors.Is(err, client.ErrNotFound) {
			return client.Client{}, err
		}

		entity := client.Client{
			ID:             uuid.New(),
			OrganizationID: targetOrg,
			Name:           dto.Name,
			ContactName:    dto.ContactName,
			Email:          dto.Email,
			PhoneNumber:    dto.PhoneNumber,
			IsActive:       true,
		}
		if dto.Address != nil && !dto.Address.Empty() {
			addr, err := s.addresses.Create(txCtx, dto.Address.ToAddress(uuid.New()))
			if err != nil {
				return client.Client{}, err
			}
			entity.AddressID = &addr.ID
		}
		return s.repo.Create(txCtx, entity)
	})
	if err != nil {
		return client.View{}, mapClientError(err)
	}

	s.publisher.Publish(client.CreatedEvent{Client: created})
	return s.toView(ctx, created)
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, dto *client.UpdateDTO) (client.View, error) {
	if fields, ok := dto.Ok(); !ok {
		return client.View{}, validationError("CLIENT_INVALID_BODY", fields)
	}
	// Ok trims, so a whitespace-only rename arrives here as the empty string.
	if dto.Name != nil && *dto.Name == "" {
		return client.View{}, serrors.Validation("CLIENT_INVALID_NAME", "name must not be blank")
	}

	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (client.Client, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return client.Client{}, err
		}
		if err := authorize(txCtx, rbac.ActionUpdate, rbac.ResourceClient, entity.OrganizationID, false); err != nil {
			return client.Client{}, err
		}

		if dto.Name != nil {
			name := *dto.Name
			// Renaming to the current name is a no-op, not a conflict.
			if name != entity.Name {
				if _, err := s.repo.GetByName(txCtx, entity.OrganizationID, name); err == nil {
					return client.Client{}, client.ErrNameTaken
				} else if !errors.Is(err, client.ErrNotFound) {
					return client.Client{}, err
				}
				entity.Name = name
			}
		}
		if dto.ContactName != nil {
			entity.ContactName = *dto.ContactName
		}
		if dto.Email != nil {
			entity.Email = *dto.Email
		}
		if dto.PhoneNumber != nil {
			entity.PhoneNumber = *dto.PhoneNumber
		}
		if dto.IsActive != nil {
			entity.IsActive = *dto.IsActive
		}
		if dto.Address != nil && !dto.Address.Empty() {
			addrID, err := upsertAddress(txCtx, s.addresses, entity.AddressID, dto.Address)
			if err != nil {
				return client.Client{}, err
			}
			entity.AddressID = &addrID
		}

		if err := s.repo.Update(txCtx, entity); err != nil {
			return client.Client{}, err
		}
		return s.repo.GetByID(txCtx, id)
	})
	if err != nil {
		return client.View{}, mapClientError(err)
	}

	s.publisher.Publish(client.UpdatedEvent{Client: updated})
	return s.toView(ctx, updated)
}

func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := authorize(txCtx, rbac.ActionDelete, rbac.ResourceClient, entity.OrganizationID, false); err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		// The owned address row goes with its owner; task overrides have
		// their own rows and are unaffected.
		if entity.AddressID != nil {
			if err := s.addresses.Delete(txCtx, *entity.AddressID); err != nil && !errors.Is(err, address.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return mapClientError(err)
	}

	s.publisher.Publish(client.DeletedEvent{ID: id})
	return nil
}

// upsertAddress rewrites the owner's existing address row in place or mints
// a new one when the owner had none.
func upsertAddress(ctx context.Context, addresses address.Repository, currentID *uuid.UUID, payload *address.Payload) (uuid.UUID, error) {
	if currentID != nil {
		if err := addresses.Update(ctx, payload.ToAddress(*currentID)); err != nil {
			return uuid.Nil, err
		}
		return *currentID, nil
	}
	addr, err := addresses.Create(ctx, payload.ToAddress(uuid.New()))
	if err != nil {
		return uuid.Nil, err
	}
	return addr.ID, nil
}

func (s *ClientService) toView(ctx context.Context, entity client.Client) (client.View, error) {
	view := client.View{Client: entity}
	if entity.AddressID == nil {
		return view, nil
	}
	addr, err := s.addresses.GetByID(ctx, *entity.AddressID)
	if err != nil {
		if errors.Is(err, address.ErrNotFound) {
			return view, nil
		}
		return client.View{}, mapClientError(err)
	}
	view.Address = &addr
	return view, nil
}

func mapClientError(err error) error {
	var svcErr *serrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	switch {
	case errors.Is(err, client.ErrNotFound):
		return serrors.NotFound("CLIENT_NOT_FOUND", "client not found", err)
	case errors.Is(err, client.ErrNameTaken):
		return serrors.Conflict("CLIENT_NAME_TAKEN", "client name already in use", err)
	}
	return serrors.Internal("client operation failed", err)
}
