package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/rbac"
)

// Claims is the signed bearer-token payload. The verified form of it is the
// only identity information services ever see.
type Claims struct {
	Email          string `json:"email"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id"`
	jwt.RegisteredClaims
}

func Issue(secret string, identity composables.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:          identity.Email,
		Role:           string(identity.Role),
		OrganizationID: identity.OrganizationID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func Verify(secret, tokenString string) (composables.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return composables.Identity{}, err
	}
	if !token.Valid {
		return composables.Identity{}, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return composables.Identity{}, fmt.Errorf("invalid subject claim: %w", err)
	}
	orgID, err := uuid.Parse(claims.OrganizationID)
	if err != nil {
		return composables.Identity{}, fmt.Errorf("invalid organization claim: %w", err)
	}
	role, err := rbac.ParseRole(claims.Role)
	if err != nil {
		return composables.Identity{}, fmt.Errorf("invalid role claim: %w", err)
	}

	return composables.Identity{
		UserID:         userID,
		Email:          claims.Email,
		Role:           role,
		OrganizationID: orgID,
	}, nil
}
