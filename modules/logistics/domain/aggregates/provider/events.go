package provider

import "github.com/google/uuid"

type CreatedEvent struct {
	Provider Provider
}

type UpdatedEvent struct {
	Provider Provider
}

type DeletedEvent struct {
	ID uuid.UUID
}
