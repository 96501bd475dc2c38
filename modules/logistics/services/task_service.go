package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/client"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/courier"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/provider"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/task"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/address"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/taskhistory"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/eventbus"
	"github.com/courierdesk/courierdesk/pkg/rbac"
	"github.com/courierdesk/courierdesk/pkg/serrors"
)

type TaskService struct {
	repo      task.Repository
	history   taskhistory.Repository
	addresses address.Repository
	clients   client.Repository
	providers provider.Repository
	couriers  courier.Repository
	resolver  *AddressResolver
	publisher eventbus.EventBus
}

func NewTaskService(
	repo task.Repository,
	history taskhistory.Repository,
	addresses address.Repository,
	clients client.Repository,
	providers provider.Repository,
	couriers courier.Repository,
	publisher eventbus.EventBus,
) *TaskService {
	return &TaskService{
		repo:      repo,
		history:   history,
		addresses: addresses,
		clients:   clients,
		providers: providers,
		couriers:  couriers,
		resolver:  NewAddressResolver(addresses, clients, providers),
		publisher: publisher,
	}
}

func (s *TaskService) GetPaginated(ctx context.Context, params *task.FindParams) ([]task.Task, int64, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return nil, 0, serrors.Unauthorized("authentication required")
	}
	if params == nil {
		params = &task.FindParams{}
	}
	if identity.Role != rbac.RoleSuperadmin {
		org := identity.OrganizationID
		params.OrganizationID = &org
	}
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceTask, scopeOrg(params.OrganizationID), false); err != nil {
		return nil, 0, err
	}
	tasks, total, err := s.repo.GetPaginated(ctx, params)
	if err != nil {
		return nil, 0, mapTaskError(err)
	}
	return tasks, total, nil
}

func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (task.View, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return task.View{}, mapTaskError(err)
	}
	if err := authorize(ctx, rbac.ActionRead, rbac.ResourceTask, entity.OrganizationID, false); err != nil {
		return task.View{}, err
	}
	return s.toView(ctx, entity)
}

func (s *TaskService) Create(ctx context.Context, dto *task.CreateDTO) (task.View, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return task.View{}, serrors.Unauthorized("authentication required")
	}
	if fields, ok := dto.Ok(); !ok {
		return task.View{}, validationError("TASK_INVALID_BODY", fields)
	}

	targetOrg, err := resolveTargetOrganization(identity, dto.OrganizationID)
	if err != nil {
		return task.View{}, err
	}
	if err := authorize(ctx, rbac.ActionCreate, rbac.ResourceTask, targetOrg, false); err != nil {
		return task.View{}, err
	}

	taskType, err := task.ParseType(dto.Type)
	if err != nil {
		return task.View{}, serrors.Validation("TASK_INVALID_TYPE", err.Error())
	}
	priority := task.PriorityNormal
	if dto.Priority != "" {
		priority, err = task.ParsePriority(dto.Priority)
		if err != nil {
			return task.View{}, serrors.Validation("TASK_INVALID_PRIORITY", err.Error())
		}
	}

	entity := task.Task{
		ID:                   uuid.New(),
		OrganizationID:       targetOrg,
		Type:                 taskType,
		Status:               task.StatusPending,
		Priority:             priority,
		ScheduledDate:        dto.ScheduledDate,
		OriginCertificate:    dto.OriginCertificate,
		InsuranceCertificate: dto.InsuranceCertificate,
		CustomsCertificate:   dto.CustomsCertificate,
		PhotoRequired:        dto.PhotoRequired,
	}
	if dto.ReferenceNumber != "" {
		ref := dto.ReferenceNumber
		entity.ReferenceNumber = &ref
	}
	if dto.Notes != "" {
		notes := dto.Notes
		entity.Notes = &notes
	}
	if dto.MBL != "" {
		mbl := dto.MBL
		entity.MBL = &mbl
	}
	if dto.HBL != "" {
		hbl := dto.HBL
		entity.HBL = &hbl
	}
	if entity.ClientID, err = parseOptionalID(dto.ClientID, "TASK_INVALID_CLIENT_ID"); err != nil {
		return task.View{}, err
	}
	if entity.ProviderID, err = parseOptionalID(dto.ProviderID, "TASK_INVALID_PROVIDER_ID"); err != nil {
		return task.View{}, err
	}
	if entity.CourierID, err = parseOptionalID(dto.CourierID, "TASK_INVALID_COURIER_ID"); err != nil {
		return task.View{}, err
	}
	if entity.LinkedTaskID, err = parseOptionalID(dto.LinkedTaskID, "TASK_INVALID_LINKED_TASK_ID"); err != nil {
		return task.View{}, err
	}
	if !entity.PartyExclusive() {
		return task.View{}, mapTaskError(task.ErrPartyExclusive)
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (task.Task, error) {
		if err := s.checkAssociations(txCtx, entity); err != nil {
			return task.Task{}, err
		}
		if entity.ReferenceNumber != nil {
			if _, err := s.repo.GetByReference(txCtx, targetOrg, *entity.ReferenceNumber); err == nil {
				return task.Task{}, task.ErrReferenceTaken
			} else if !errors.Is(err, task.ErrNotFound) {
				return task.Task{}, err
			}
		}
		if dto.AddressOverride != nil && !dto.AddressOverride.Empty() {
			addr, err := s.addresses.Create(txCtx, dto.AddressOverride.ToAddress(uuid.New()))
			if err != nil {
				return task.Task{}, err
			}
			entity.AddressOverrideID = &addr.ID
		}
		return s.repo.Create(txCtx, entity)
	})
	if err != nil {
		return task.View{}, mapTaskError(err)
	}

	s.publisher.Publish(task.CreatedEvent{Task: created})
	return s.toView(ctx, created)
}

func (s *TaskService) Update(ctx context.Context, id uuid.UUID, dto *task.UpdateDTO) (task.View, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return task.View{}, serrors.Unauthorized("authentication required")
	}
	if fields, ok := dto.Ok(); !ok {
		return task.View{}, validationError("TASK_INVALID_BODY", fields)
	}

	var previousStatus task.Status
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (task.Task, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return task.Task{}, err
		}
		if err := authorize(txCtx, rbac.ActionUpdate, rbac.ResourceTask, entity.OrganizationID, false); err != nil {
			return task.Task{}, err
		}
		previousStatus = entity.Status

		if dto.Type != nil {
			taskType, err := task.ParseType(*dto.Type)
			if err != nil {
				return task.Task{}, serrors.Validation("TASK_INVALID_TYPE", err.Error())
			}
			entity.Type = taskType
		}
		if dto.Status != nil {
			status, err := task.ParseStatus(*dto.Status)
			if err != nil {
				return task.Task{}, serrors.Validation("TASK_INVALID_STATUS", err.Error())
			}
			entity.Status = status
		}
		if dto.Priority != nil {
			priority, err := task.ParsePriority(*dto.Priority)
			if err != nil {
				return task.Task{}, serrors.Validation("TASK_INVALID_PRIORITY", err.Error())
			}
			entity.Priority = priority
		}
		if dto.ReferenceNumber != nil {
			entity.ReferenceNumber = nullIfBlankRef(*dto.ReferenceNumber)
		}
		if dto.ClientID != nil {
			if entity.ClientID, err = parseClearableID(*dto.ClientID, "TASK_INVALID_CLIENT_ID"); err != nil {
				return task.Task{}, err
			}
		}
		if dto.ProviderID != nil {
			if entity.ProviderID, err = parseClearableID(*dto.ProviderID, "TASK_INVALID_PROVIDER_ID"); err != nil {
				return task.Task{}, err
			}
		}
		if dto.CourierID != nil {
			if entity.CourierID, err = parseClearableID(*dto.CourierID, "TASK_INVALID_COURIER_ID"); err != nil {
				return task.Task{}, err
			}
		}
		if dto.LinkedTaskID != nil {
			if entity.LinkedTaskID, err = parseClearableID(*dto.LinkedTaskID, "TASK_INVALID_LINKED_TASK_ID"); err != nil {
				return task.Task{}, err
			}
		}
		if dto.ScheduledDate != nil {
			entity.ScheduledDate = dto.ScheduledDate
		}
		if dto.Notes != nil {
			entity.Notes = nullIfBlankRef(*dto.Notes)
		}
		if dto.MBL != nil {
			entity.MBL = nullIfBlankRef(*dto.MBL)
		}
		if dto.HBL != nil {
			entity.HBL = nullIfBlankRef(*dto.HBL)
		}
		if dto.OriginCertificate != nil {
			entity.OriginCertificate = *dto.OriginCertificate
		}
		if dto.InsuranceCertificate != nil {
			entity.InsuranceCertificate = *dto.InsuranceCertificate
		}
		if dto.CustomsCertificate != nil {
			entity.CustomsCertificate = *dto.CustomsCertificate
		}
		if dto.PhotoRequired != nil {
			entity.PhotoRequired = *dto.PhotoRequired
		}

		// Exclusivity is judged on the merged result, so an update that
		// only adds a provider to a client task still fails.
		if !entity.PartyExclusive() {
			return task.Task{}, task.ErrPartyExclusive
		}
		if err := s.checkAssociations(txCtx, entity); err != nil {
			return task.Task{}, err
		}
		if entity.ReferenceNumber != nil {
			existing, err := s.repo.GetByReference(txCtx, entity.OrganizationID, *entity.ReferenceNumber)
			if err == nil && existing.ID != entity.ID {
				return task.Task{}, task.ErrReferenceTaken
			} else if err != nil && !errors.Is(err, task.ErrNotFound) {
				return task.Task{}, err
			}
		}
		if dto.AddressOverride != nil && !dto.AddressOverride.Empty() {
			addrID, err := upsertAddress(txCtx, s.addresses, entity.AddressOverrideID, dto.AddressOverride)
			if err != nil {
				return task.Task{}, err
			}
			entity.AddressOverrideID = &addrID
		}

		if err := s.repo.Update(txCtx, entity); err != nil {
			return task.Task{}, err
		}
		if entity.Status != previousStatus {
			prev := string(previousStatus)
			next := string(entity.Status)
			changedBy := identity.UserID
			_, err = s.history.Create(txCtx, taskhistory.Entry{
				ID:             uuid.New(),
				TaskID:         entity.ID,
				PreviousStatus: &prev,
				NewStatus:      &next,
				ChangedBy:      &changedBy,
			})
			if err != nil {
				return task.Task{}, err
			}
		}
		return s.repo.GetByID(txCtx, id)
	})
	if err != nil {
		return task.View{}, mapTaskError(err)
	}

	s.publisher.Publish(task.UpdatedEvent{Task: updated})
	if updated.Status != previousStatus {
		s.publisher.Publish(task.StatusChangedEvent{Task: updated, PreviousStatus: previousStatus})
	}
	return s.toView(ctx, updated)
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := authorize(txCtx, rbac.ActionDelete, rbac.ResourceTask, entity.OrganizationID, false); err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		// Photos and history cascade at the schema level; the override
		// address row is owned by the task and removed here.
		if entity.AddressOverrideID != nil {
			if err := s.addresses.Delete(txCtx, *entity.AddressOverrideID); err != nil && !errors.Is(err, address.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return mapTaskError(err)
	}

	s.publisher.Publish(task.DeletedEvent{ID: id})
	return nil
}

// checkAssociations verifies every referenced party lives in the task's
// organization. Cross-tenant references are rejected as validation failures
// rather than leaking another tenant's existence through NotFound.
func (s *TaskService) checkAssociations(ctx context.Context, entity task.Task) error {
	if entity.ClientID != nil {
		c, err := s.clients.GetByID(ctx, *entity.ClientID)
		if err != nil || c.OrganizationID != entity.OrganizationID {
			return serrors.Validation("TASK_UNKNOWN_CLIENT", "client does not exist in this organization")
		}
	}
	if entity.ProviderID != nil {
		p, err := s.providers.GetByID(ctx, *entity.ProviderID)
		if err != nil || p.OrganizationID != entity.OrganizationID {
			return serrors.Validation("TASK_UNKNOWN_PROVIDER", "provider does not exist in this organization")
		}
	}
	if entity.CourierID != nil {
		c, err := s.couriers.GetByID(ctx, *entity.CourierID)
		if err != nil || c.OrganizationID != entity.OrganizationID {
			return serrors.Validation("TASK_UNKNOWN_COURIER", "courier does not exist in this organization")
		}
	}
	if entity.LinkedTaskID != nil {
		linked, err := s.repo.GetByID(ctx, *entity.LinkedTaskID)
		if err != nil || linked.OrganizationID != entity.OrganizationID {
			return serrors.Validation("TASK_UNKNOWN_LINKED_TASK", "linked task does not exist in this organization")
		}
	}
	return nil
}

func (s *TaskService) toView(ctx context.Context, entity task.Task) (task.View, error) {
	addr, err := s.resolver.Resolve(ctx, entity)
	if err != nil {
		return task.View{}, mapTaskError(err)
	}
	return task.View{Task: entity, Address: addr}, nil
}

func parseOptionalID(value, code string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, serrors.Validation(code, "identifier is not valid")
	}
	return &id, nil
}

// parseClearableID treats the empty string as an explicit clear.
func parseClearableID(value, code string) (*uuid.UUID, error) {
	return parseOptionalID(value, code)
}

// nullIfBlankRef trims like the create path does, so an update can never
// store a padded variant that slips past the exact-match uniqueness check.
func nullIfBlankRef(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func mapTaskError(err error) error {
	var svcErr *serrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	switch {
	case errors.Is(err, task.ErrNotFound):
		return serrors.NotFound("TASK_NOT_FOUND", "task not found", err)
	case errors.Is(err, task.ErrReferenceTaken):
		return serrors.Conflict("TASK_REFERENCE_TAKEN", "reference number already in use in this organization", err)
	case errors.Is(err, task.ErrPartyExclusive):
		return serrors.Validation("TASK_PARTY_EXCLUSIVE", "a task may reference a client or a provider, not both")
	}
	return serrors.Internal("task operation failed", err)
}
