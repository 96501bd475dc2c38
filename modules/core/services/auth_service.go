package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/courierdesk/courierdesk/modules/core/domain/aggregates/user"
	"github.com/courierdesk/courierdesk/modules/core/domain/entities/organization"
	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/configuration"
	"github.com/courierdesk/courierdesk/pkg/constants"
	"github.com/courierdesk/courierdesk/pkg/rbac"
	"github.com/courierdesk/courierdesk/pkg/serrors"
	"github.com/courierdesk/courierdesk/pkg/tokens"
)

type RegisterDTO struct {
	OrganizationName string `json:"organizationName" validate:"required"`
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
}

func (d *RegisterDTO) Normalize() {
	d.OrganizationName = strings.TrimSpace(d.OrganizationName)
	d.Name = strings.TrimSpace(d.Name)
	d.Email = user.NormalizeEmail(d.Email)
}

type AuthService struct {
	users user.Repository
	orgs  organization.Repository
}

func NewAuthService(users user.Repository, orgs organization.Repository) *AuthService {
	return &AuthService{users: users, orgs: orgs}
}

// Login verifies credentials and issues a signed bearer token carrying the
// identity bundle services consume.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, user.User, error) {
	email = user.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", user.User{}, serrors.Unauthorized("invalid credentials")
	}

	entity, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", user.User{}, serrors.Unauthorized("invalid credentials")
		}
		return "", user.User{}, serrors.Internal("login failed", err)
	}
	if !entity.IsActive() || !entity.CheckPassword(password) {
		return "", user.User{}, serrors.Unauthorized("invalid credentials")
	}

	token, err := s.issueToken(entity)
	if err != nil {
		return "", user.User{}, serrors.Internal("failed to issue token", err)
	}
	return token, entity, nil
}

// Register bootstraps a new tenant: the organization and its first org admin
// are created inside one transaction, so a half-registered tenant can never
// be observed.
func (s *AuthService) Register(ctx context.Context, dto *RegisterDTO) (string, user.User, error) {
	dto.Normalize()
	if err := constants.Validate.Struct(dto); err != nil {
		var validatorErrs validator.ValidationErrors
		if errors.As(err, &validatorErrs) {
			return "", user.User{}, validationError("AUTH_INVALID_BODY", serrors.ProcessValidatorErrors(validatorErrs))
		}
		return "", user.User{}, serrors.Validation("AUTH_INVALID_BODY", err.Error())
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
		org, err := s.orgs.Create(txCtx, organization.New(dto.OrganizationName))
		if err != nil {
			return user.User{}, err
		}
		admin := user.New(org.ID(), dto.Name, dto.Email, rbac.RoleOrgAdmin)
		admin, err = admin.SetPassword(dto.Password)
		if err != nil {
			return user.User{}, err
		}
		return s.users.Create(txCtx, admin)
	})
	if err != nil {
		switch {
		case errors.Is(err, organization.ErrNameTaken):
			return "", user.User{}, serrors.Validation("AUTH_ORGANIZATION_EXISTS", "organization name already in use")
		case errors.Is(err, user.ErrEmailTaken):
			return "", user.User{}, serrors.Validation("AUTH_EMAIL_EXISTS", "email already in use")
		}
		return "", user.User{}, serrors.Internal("registration failed", err)
	}

	token, err := s.issueToken(created)
	if err != nil {
		return "", user.User{}, serrors.Internal("failed to issue token", err)
	}
	return token, created, nil
}

func (s *AuthService) issueToken(entity user.User) (string, error) {
	conf := configuration.Use()
	return tokens.Issue(conf.Auth.JWTSecret, composables.Identity{
		UserID:         entity.ID(),
		Email:          entity.Email(),
		Role:           entity.Role(),
		OrganizationID: entity.OrganizationID(),
	}, conf.Auth.TokenTTL)
}
