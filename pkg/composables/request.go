package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/courierdesk/courierdesk/pkg/constants"
	"github.com/courierdesk/courierdesk/pkg/rbac"
)

var (
	ErrNoIdentity = errors.New("no identity found in context")
	ErrNoLogger   = errors.New("logger not found")
)

// Identity is the verified claim bundle derived from a bearer credential.
// It is produced once per request by the auth middleware and never mutated.
type Identity struct {
	UserID         uuid.UUID
	Email          string
	Role           rbac.Role
	OrganizationID uuid.UUID
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, constants.IdentityKey, identity)
}

func UseIdentity(ctx context.Context) (Identity, error) {
	identity, ok := ctx.Value(constants.IdentityKey).(Identity)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return identity, nil
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the request-scoped logger, or a plain logger when none
// was installed (background jobs, tests).
func UseLogger(ctx context.Context) *logrus.Entry {
	logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry)
	if !ok {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logger
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, constants.RequestIDKey, requestID)
}

func UseRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(constants.RequestIDKey).(string)
	return requestID
}
