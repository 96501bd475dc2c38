package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/courierdesk/courierdesk/pkg/rbac"
)

type User struct {
	id             uuid.UUID
	organizationID uuid.UUID
	name           string
	email          string
	passwordHash   string
	role           rbac.Role
	isActive       bool
	createdAt      time.Time
	updatedAt      time.Time
}

func New(organizationID uuid.UUID, name, email string, role rbac.Role) User {
	return User{
		id:             uuid.New(),
		organizationID: organizationID,
		name:           strings.TrimSpace(name),
		email:          NormalizeEmail(email),
		role:           role,
		isActive:       true,
	}
}

func Hydrate(
	id uuid.UUID,
	organizationID uuid.UUID,
	name string,
	email string,
	passwordHash string,
	role rbac.Role,
	isActive bool,
	createdAt time.Time,
	updatedAt time.Time,
) User {
	return User{
		id:             id,
		organizationID: organizationID,
		name:           name,
		email:          email,
		passwordHash:   passwordHash,
		role:           role,
		isActive:       isActive,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// NormalizeEmail lowercases and trims; email uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u User) ID() uuid.UUID             { return u.id }
func (u User) OrganizationID() uuid.UUID { return u.organizationID }
func (u User) Name() string              { return u.name }
func (u User) Email() string             { return u.email }
func (u User) PasswordHash() string      { return u.passwordHash }
func (u User) Role() rbac.Role           { return u.role }
func (u User) IsActive() bool            { return u.isActive }
func (u User) CreatedAt() time.Time      { return u.createdAt }
func (u User) UpdatedAt() time.Time      { return u.updatedAt }
func (u User) IsZero() bool              { return u.id == uuid.Nil }

// SetPassword stores a one-way hash; the clear form is never persisted.
func (u User) SetPassword(password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return u, err
	}
	u.passwordHash = string(hash)
	return u, nil
}

func (u User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) == nil
}

func (u User) WithName(name string) User {
	u.name = strings.TrimSpace(name)
	return u
}

func (u User) WithEmail(email string) User {
	u.email = NormalizeEmail(email)
	return u
}

func (u User) WithRole(role rbac.Role) User {
	u.role = role
	return u
}

func (u User) WithActive(active bool) User {
	u.isActive = active
	return u
}
