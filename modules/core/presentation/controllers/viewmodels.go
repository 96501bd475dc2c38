package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/modules/core/domain/aggregates/user"
	"github.com/courierdesk/courierdesk/modules/core/domain/entities/organization"
)

type OrganizationResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toOrganizationResponse(o organization.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:        o.ID(),
		Name:      o.Name(),
		CreatedAt: o.CreatedAt(),
		UpdatedAt: o.UpdatedAt(),
	}
}

func toOrganizationResponses(orgs []organization.Organization) []OrganizationResponse {
	out := make([]OrganizationResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, toOrganizationResponse(o))
	}
	return out
}

// UserResponse deliberately omits the password hash.
type UserResponse struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:             u.ID(),
		OrganizationID: u.OrganizationID(),
		Name:           u.Name(),
		Email:          u.Email(),
		Role:           string(u.Role()),
		IsActive:       u.IsActive(),
		CreatedAt:      u.CreatedAt(),
		UpdatedAt:      u.UpdatedAt(),
	}
}

func toUserResponses(users []user.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
