package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/core/domain/entities/organization"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/eventbus"
	"github.com/courierdesk/courierdesk/pkg/rbac"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

type OrganizationService struct {
	repo      organization.Repository
	publisher eventbus.EventBus
}

func NewOrganizationService(repo organization.Repository, publisher eventbus.EventBus) *OrganizationService {
	return &OrganizationService{repo: repo, publisher: publisher}
}

func (s *OrganizationService) GetPaginated(ctx context.Context, params *organization.FindParams) ([]organization.Organization, int64, error) {
	if err := authorize(ctx, rbac.ActionAdminister, rbac.ResourceOrganization, uuid.Nil, false); err != nil {
		return nil, 0, err
	}
	orgs, total, err := s.repo.GetPaginated(ctx, params)
	if err != nil {
		return nil, 0, mapOrganizationError(err)
	}
	return orgs, total, nil
}

func (s *OrganizationService) GetByID(ctx context.Context, id uuid.UUID) (organization.Organization, error) {
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceOrganization, id, false); err != nil {
		return organization.Organization{}, err
	}
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return organization.Organization{}, mapOrganizationError(err)
	}
	return entity, nil
}

func (s *OrganizationService) Create(ctx context.Context, name string) (organization.Organization, error) {
	if err := authorize(ctx, rbac.ActionAdminister, rbac.ResourceOrganization, uuid.Nil, false); err != nil {
		return organization.Organization{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return organization.Organization{}, serrors.Validation("ORGANIZATION_INVALID_NAME", "name must not be blank")
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (organization.Organization, error) {
		return s.repo.Create(txCtx, organization.New(name))
	})
	if err != nil {
		return organization.Organization{}, mapOrganizationError(err)
	}

	s.publisher.Publish(organization.CreatedEvent{Organization: created})
	return created, nil
}

func (s *OrganizationService) Rename(ctx context.Context, id uuid.UUID, name string) (organization.Organization, error) {
	if err := authorize(ctx, rbac.ActionAdminister, rbac.ResourceOrganization, id, false); err != nil {
		return organization.Organization{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return organization.Organization{}, serrors.Validation("ORGANIZATION_INVALID_NAME", "name must not be blank")
	}

	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (organization.Organization, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return organization.Organization{}, err
		}
		if err := s.repo.Update(txCtx, entity.Rename(name)); err != nil {
			return organization.Organization{}, err
		}
		return s.repo.GetByID(txCtx, id)
	})
	if err != nil {
		return organization.Organization{}, mapOrganizationError(err)
	}

	s.publisher.Publish(organization.UpdatedEvent{Organization: updated})
	return updated, nil
}

func (s *OrganizationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := authorize(ctx, rbac.ActionAdminister, rbac.ResourceOrganization, id, false); err != nil {
		return err
	}

	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetByID(txCtx, id); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return mapOrganizationError(err)
	}

	s.publisher.Publish(organization.DeletedEvent{ID: id})
	return nil
}

func mapOrganizationError(err error) error {
	var svcErr *serrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	switch {
	case errors.Is(err, organization.ErrNotFound):
		return serrors.NotFound("ORGANIZATION_NOT_FOUND", "organization not found", err)
	case errors.Is(err, organization.ErrNameTaken):
		return serrors.Conflict("ORGANIZATION_NAME_TAKEN", "organization name already in use", err)
	}
	return serrors.Internal("organization operation failed", err)
}
