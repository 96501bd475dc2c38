package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/provider"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/address"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/eventbus"
	"github.com/courierdesk/courierdesk/pkg/rbac"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

type ProviderService struct {
	repo      provider.Repository
	addresses address.Repository
	publisher eventbus.EventBus
}

func NewProviderService(repo provider.Repository, addresses address.Repository, publisher eventbus.EventBus) *ProviderService {
	return &ProviderService{repo: repo, addresses: addresses, publisher: publisher}
}

func (s *ProviderService) GetPaginated(ctx context.Context, params *provider.FindParams) ([]provider.Provider, int64, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return nil, 0, serrors.Unauthorized("authentication required")
	}
	if params == nil {
		params = &provider.FindParams{}
	}
	if identity.Role != rbac.RoleSuperadmin {
		org := identity.OrganizationID
		params.OrganizationID = &org
	}
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceProvider, scopeOrg(params.OrganizationID), false); err != nil {
		return nil, 0, err
	}
	providers, total, err := s.repo.GetPaginated(ctx, params)
	if err != nil {
		return nil, 0, mapProviderError(err)
	}
	return providers, total, nil
}

func (s *ProviderService) GetByID(ctx context.Context, id uuid.UUID) (provider.View, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return provider.View{}, mapProviderError(err)
	}
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceProvider, entity.OrganizationID, false); err != nil {
		return provider.View{}, err
	}
	return s.toView(ctx, entity)
}

func (s *ProviderService) Create(ctx context.Context, dto *provider.CreateDTO) (provider.View, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return provider.View{}, serrors.Unauthorized("authentication required")
	}
	if fields, ok := dto.Ok(); !ok {
		return provider.View{}, validationError("PROVIDER_INVALID_BODY", fields)
	}

	targetOrg, err := resolveTargetOrganization(identity, dto.OrganizationID)
	if err != nil {
		return provider.View{}, err
	}
	if err := authorize(ctx, rbac.ActionCreate, rbac.ResourceProvider, targetOrg, false); err != nil {
		return provider.View{}, err
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (provider.Provider, error) {
		if _, err := s.repo.GetByName(txCtx, targetOrg, dto.Name); err == nil {
			return provider.Provider{}, provider.ErrNameTaken
		} else if !errors.Is(err, provider.ErrNotFound) {
			return provider.Provider{}, err
		}

		entity := provider.Provider{
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
				return provider.Provider{}, err
			}
			entity.AddressID = &addr.ID
		}
		return s.repo.Create(txCtx, entity)
	})
	if err != nil {
		return provider.View{}, mapProviderError(err)
	}

	s.publisher.Publish(provider.CreatedEvent{Provider: created})
	return s.toView(ctx, created)
}

func (s *ProviderService) Update(ctx context.Context, id uuid.UUID, dto *provider.UpdateDTO) (provider.View, error) {
	if fields, ok := dto.Ok(); !ok {
		return provider.View{}, validationError("PROVIDER_INVALID_BODY", fields)
	}
	// Ok trims, so a whitespace-only rename arrives here as the empty string.
	if dto.Name != nil && *dto.Name == "" {
		return provider.View{}, serrors.Validation("PROVIDER_INVALID_NAME", "name must not be blank")
	}

	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (provider.Provider, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return provider.Provider{}, err
		}
		if err := authorize(txCtx, rbac.ActionUpdate, rbac.ResourceProvider, entity.OrganizationID, false); err != nil {
			return provider.Provider{}, err
		}

		if dto.Name != nil {
			name := *dto.Name
			if name != entity.Name {
				if _, err := s.repo.GetByName(txCtx, entity.OrganizationID, name); err == nil {
					return provider.Provider{}, provider.ErrNameTaken
				} else if !errors.Is(err, provider.ErrNotFound) {
					return provider.Provider{}, err
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
				return provider.Provider{}, err
			}
			entity.AddressID = &addrID
		}

		if err := s.repo.Update(txCtx, entity); err != nil {
			return provider.Provider{}, err
		}
		return s.repo.GetByID(txCtx, id)
	})
	if err != nil {
		return provider.View{}, mapProviderError(err)
	}

	s.publisher.Publish(provider.UpdatedEvent{Provider: updated})
	return s.toView(ctx, updated)
}

func (s *ProviderService) Delete(ctx context.Context, id uuid.UUID) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := authorize(txCtx, rbac.ActionDelete, rbac.ResourceProvider, entity.OrganizationID, false); err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		if entity.AddressID != nil {
			if err := s.addresses.Delete(txCtx, *entity.AddressID); err != nil && !errors.Is(err, address.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return mapProviderError(err)
	}

	s.publisher.Publish(provider.DeletedEvent{ID: id})
	return nil
}

func (s *ProviderService) toView(ctx context.Context, entity provider.Provider) (provider.View, error) {
	view := provider.View{Provider: entity}
	if entity.AddressID == nil {
		return view, nil
	}
	addr, err := s.addresses.GetByID(ctx, *entity.AddressID)
	if err != nil {
		if errors.Is(err, address.ErrNotFound) {
			return view, nil
		}
		return provider.View{}, mapProviderError(err)
	}
	view.Address = &addr
	return view, nil
}

func mapProviderError(err error) error {
	var svcErr *serrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	switch {
	case errors.Is(err, provider.ErrNotFound):
		return serrors.NotFound("PROVIDER_NOT_FOUND", "provider not found", err)
	case errors.Is(err, provider.ErrNameTaken):
		return serrors.Conflict("PROVIDER_NAME_TAKEN", "provider name already in use", err)
	}
	return serrors.Internal("provider operation failed", err)
}
