package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/client"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/provider"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/task"
	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/address"
)

// AddressResolver computes a task's effective address. Precedence is fixed:
// a per-task override wins, then the client's address, then the provider's.
// A task with no override and no addressed party resolves to no address,
// which is a valid outcome and not an error.
type AddressResolver struct {
	addresses address.Repository
	clients   client.Repository
	providers provider.Repository
}

func NewAddressResolver(addresses address.Repository, clients client.Repository, providers provider.Repository) *AddressResolver {
	return &AddressResolver{addresses: addresses, clients: clients, providers: providers}
}

// Resolve follows the precedence chain for one task. A party's active flag is
// irrelevant here: deactivated clients and providers still have addresses.
// A dangling link anywhere in the chain falls through to the next source
// rather than failing the resolution.
func (r *AddressResolver) Resolve(ctx context.Context, t task.Task) (*address.Address, error) {
	if t.AddressOverrideID != nil {
		found, err := r.addresses.GetByID(ctx, *t.AddressOverrideID)
		if err == nil {
			return &found, nil
		}
		if !errors.Is(err, address.ErrNotFound) {
			return nil, err
		}
	}
	if t.ClientID != nil {
		c, err := r.clients.GetByID(ctx, *t.ClientID)
		if err != nil && !errors.Is(err, client.ErrNotFound) {
			return nil, err
		}
		if err == nil && c.AddressID != nil {
			return r.lookup(ctx, *c.AddressID)
		}
	}
	if t.ProviderID != nil {
		p, err := r.providers.GetByID(ctx, *t.ProviderID)
		if err != nil && !errors.Is(err, provider.ErrNotFound) {
			return nil, err
		}
		if err == nil && p.AddressID != nil {
			return r.lookup(ctx, *p.AddressID)
		}
	}
	return nil, nil
}

func (r *AddressResolver) lookup(ctx context.Context, id uuid.UUID) (*address.Address, error) {
	found, err := r.addresses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, address.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}
